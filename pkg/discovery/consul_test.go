package discovery

import (
	"errors"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAgent struct {
	registered   *api.AgentServiceRegistration
	deregistered string
	err          error
}

func (a *fakeAgent) ServiceRegister(service *api.AgentServiceRegistration) error {
	if a.err != nil {
		return a.err
	}
	a.registered = service
	return nil
}

func (a *fakeAgent) ServiceDeregister(serviceID string) error {
	if a.err != nil {
		return a.err
	}
	a.deregistered = serviceID
	return nil
}

func TestServiceRegistry(t *testing.T) {
	t.Run("registers with a health check", func(t *testing.T) {
		agent := &fakeAgent{}
		registry := newServiceRegistry(agent, "album-service", "album-service-1", "8080", zap.NewNop())

		require.NoError(t, registry.Register())
		require.NotNil(t, agent.registered)
		assert.Equal(t, "album-service-1", agent.registered.ID)
		assert.Equal(t, 8080, agent.registered.Port)
		assert.Equal(t, "http://album-service:8080/health", agent.registered.Check.HTTP)

		require.NoError(t, registry.Deregister())
		assert.Equal(t, "album-service-1", agent.deregistered)
	})

	t.Run("rejects a non numeric port", func(t *testing.T) {
		registry := newServiceRegistry(&fakeAgent{}, "album-service", "album-service-1", "http", zap.NewNop())
		assert.Error(t, registry.Register())
	})

	t.Run("wraps agent errors", func(t *testing.T) {
		agentErr := errors.New("agent down")
		registry := newServiceRegistry(&fakeAgent{err: agentErr}, "album-service", "album-service-1", "8080", zap.NewNop())

		err := registry.Register()
		assert.ErrorIs(t, err, agentErr)
	})
}
