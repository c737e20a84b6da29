// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/morph-cli/internal/brain/models"
	"github.com/xkilldash9x/morph-cli/internal/brain/synthesizer"
	"github.com/xkilldash9x/morph-cli/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Brain() config.BrainConfig {
	args := m.Called()
	return args.Get(0).(config.BrainConfig)
}

func (m *MockConfig) SetBrainDetectDrift(b bool) {
	m.Called(b)
}

// -- Synthesizer Mock --

// MockSynthesizer mocks synthesizer.Synthesizer for a fixed channel.
type MockSynthesizer struct {
	mock.Mock
	Ch models.Channel
}

// NewMockSynthesizer returns a mock bound to channel c.
func NewMockSynthesizer(c models.Channel) *MockSynthesizer {
	return &MockSynthesizer{Ch: c}
}

func (m *MockSynthesizer) Channel() models.Channel {
	return m.Ch
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, in synthesizer.Input) (*models.ApplyPayload, error) {
	args := m.Called(ctx, in)
	var payload *models.ApplyPayload
	if p := args.Get(0); p != nil {
		payload = p.(*models.ApplyPayload)
	}
	return payload, args.Error(1)
}

var (
	_ config.Interface        = (*MockConfig)(nil)
	_ synthesizer.Synthesizer = (*MockSynthesizer)(nil)
)
