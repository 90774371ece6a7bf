package barometer

import (
	"context"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// BME280Reader samples a Bosch BME280/BMP280 on an I2C bus. The bus is
// opened for each read so a one-shot report never holds the device.
type BME280Reader struct {
	bus  string
	addr uint16

	initOnce sync.Once
	initErr  error
}

// NewBME280Reader uses the default bus (usually /dev/i2c-1) when bus is
// empty. addr is 0x76 or 0x77 depending on the SDO pin.
func NewBME280Reader(bus string, addr uint16) *BME280Reader {
	if addr == 0 {
		addr = 0x76
	}
	return &BME280Reader{bus: bus, addr: addr}
}

func (r *BME280Reader) ReadPressure(ctx context.Context) (float64, error) {
	r.initOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			r.initErr = fmt.Errorf("host.Init: %w", err)
		}
	})
	if r.initErr != nil {
		return 0, r.initErr
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	bus, err := i2creg.Open(r.bus)
	if err != nil {
		return 0, fmt.Errorf("i2creg.Open: %w", err)
	}
	defer bus.Close()

	dev, err := bmxx80.NewI2C(bus, r.addr, &bmxx80.DefaultOpts)
	if err != nil {
		return 0, fmt.Errorf("bmxx80.NewI2C: %w", err)
	}
	defer dev.Halt()

	var env physic.Env
	if err := dev.Sense(&env); err != nil {
		return 0, fmt.Errorf("sense: %w", err)
	}

	return pascalsToHPa(env.Pressure), nil
}

// pascalsToHPa converts periph's nano-pascal fixed point to hPa.
func pascalsToHPa(p physic.Pressure) float64 {
	return float64(p) / float64(100*physic.Pascal)
}
