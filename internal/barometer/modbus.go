package barometer

import (
	"context"
	"fmt"
	"time"

	"npk-weather/internal/modbus"
)

// ModbusConfig locates a pressure value on a Modbus device.
type ModbusConfig struct {
	URL          string
	UnitID       uint8
	Register     uint16
	RegisterType modbus.RegisterType
	// Words is 1 for a 16-bit register or 2 for a 32-bit pair.
	Words   int
	Scale   float64
	Timeout time.Duration
}

// ModbusReader reads a raw register and multiplies it by Scale to get hPa.
type ModbusReader struct {
	client *modbus.Client
	cfg    ModbusConfig
}

func NewModbusReader(cfg ModbusConfig) *ModbusReader {
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}
	if cfg.RegisterType == "" {
		cfg.RegisterType = modbus.InputRegister
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &ModbusReader{
		client: modbus.NewClient(cfg.URL, cfg.UnitID, cfg.Timeout),
		cfg:    cfg,
	}
}

func (r *ModbusReader) ReadPressure(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := r.client.Connect(); err != nil {
		return 0, err
	}

	var raw float64
	if r.cfg.Words == 2 {
		v, err := r.client.ReadUint32(r.cfg.RegisterType, r.cfg.Register)
		if err != nil {
			r.client.Close()
			return 0, err
		}
		raw = float64(v)
	} else {
		v, err := r.client.ReadUint16(r.cfg.RegisterType, r.cfg.Register)
		if err != nil {
			r.client.Close()
			return 0, err
		}
		raw = float64(v)
	}

	return raw * r.cfg.Scale, nil
}

func (r *ModbusReader) Close() error {
	return r.client.Close()
}

func (r *ModbusReader) String() string {
	return fmt.Sprintf("modbus %s unit %d %s register %d", r.cfg.URL, r.cfg.UnitID, r.cfg.RegisterType, r.cfg.Register)
}
