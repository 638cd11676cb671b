package driven

import "github.com/usenet-tools/nntpidx/internal/core/domain"

// ConfigStore loads and validates the INI-style configuration surface.
type ConfigStore interface {
	Load(path string) (*domain.Config, error)
}
