package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
)

// InMemoryDeviceRepository is the device inventory. Devices are stateful,
// so every access goes through Update under the lock.
type InMemoryDeviceRepository struct {
	mu      sync.Mutex
	devices map[string]models.NetworkDevice
}

// NewInMemoryDeviceRepository creates an empty device inventory
func NewInMemoryDeviceRepository() *InMemoryDeviceRepository {
	return &InMemoryDeviceRepository{
		devices: make(map[string]models.NetworkDevice),
	}
}

var _ ports.DeviceRepository = (*InMemoryDeviceRepository)(nil)

func (r *InMemoryDeviceRepository) Add(ctx context.Context, id string, device models.NetworkDevice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[id]; exists {
		return fmt.Errorf("device %s: %w", id, ports.ErrAlreadyExists)
	}
	r.devices[id] = device
	return nil
}

func (r *InMemoryDeviceRepository) Update(ctx context.Context, id string, fn func(models.NetworkDevice) string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, ok := r.devices[id]
	if !ok {
		return "", fmt.Errorf("device %s: %w", id, ports.ErrNotFound)
	}
	return fn(device), nil
}
