package modbus

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/simonvetter/modbus"
)

// RegisterType selects the Modbus table a sensor value lives in.
type RegisterType string

const (
	InputRegister   RegisterType = "input"
	HoldingRegister RegisterType = "holding"
)

// Client is a lazily connected Modbus TCP/RTU client shared by callers.
type Client struct {
	client  *modbus.ModbusClient
	mu      sync.Mutex
	url     string
	unitID  uint8
	timeout time.Duration
}

// NewClient accepts any URL the modbus library understands, such as
// "tcp://10.0.0.5:502" or "rtu:///dev/ttyUSB0".
func NewClient(url string, unitID uint8, timeout time.Duration) *Client {
	if !strings.Contains(url, "://") {
		url = "tcp://" + url
	}
	return &Client{
		url:     url,
		unitID:  unitID,
		timeout: timeout,
	}
}

func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}

	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     c.url,
		Timeout: c.timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create modbus client: %w", err)
	}

	if err := client.Open(); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	client.SetUnitId(c.unitID)
	c.client = client

	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}

	err := c.client.Close()
	c.client = nil
	return err
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client != nil
}

func (c *Client) ReadRegisters(kind RegisterType, address, quantity uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	table := modbus.INPUT_REGISTER
	if kind == HoldingRegister {
		table = modbus.HOLDING_REGISTER
	}

	regs, err := c.client.ReadRegisters(address, quantity, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s registers at %d: %w", kind, address, err)
	}

	return regs, nil
}

func (c *Client) ReadUint16(kind RegisterType, address uint16) (uint16, error) {
	regs, err := c.ReadRegisters(kind, address, 1)
	if err != nil {
		return 0, err
	}
	return regs[0], nil
}

func (c *Client) ReadUint32(kind RegisterType, address uint16) (uint32, error) {
	regs, err := c.ReadRegisters(kind, address, 2)
	if err != nil {
		return 0, err
	}
	// Low word first, high word second
	return uint32(regs[0]) | uint32(regs[1])<<16, nil
}

func (c *Client) Reconnect() error {
	c.Close()
	return c.Connect()
}
