package discovery

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// Agent is the part of the Consul agent API the registry uses
type Agent interface {
	ServiceRegister(service *api.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

// ServiceRegistry registers the service with Consul
type ServiceRegistry struct {
	agent       Agent
	serviceName string
	serviceID   string
	servicePort string
	log         *zap.Logger
}

func NewServiceRegistry(consulAddress, serviceName, serviceID, servicePort string, log *zap.Logger) (*ServiceRegistry, error) {
	config := api.DefaultConfig()
	config.Address = consulAddress

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	return newServiceRegistry(client.Agent(), serviceName, serviceID, servicePort, log), nil
}

func newServiceRegistry(agent Agent, serviceName, serviceID, servicePort string, log *zap.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		agent:       agent,
		serviceName: serviceName,
		serviceID:   serviceID,
		servicePort: servicePort,
		log:         log,
	}
}

// Registration describes the service and its HTTP health check
func (sr *ServiceRegistry) Registration() (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(sr.servicePort)
	if err != nil {
		return nil, fmt.Errorf("invalid port: %s: %w", sr.servicePort, err)
	}

	return &api.AgentServiceRegistration{
		ID:   sr.serviceID,
		Name: sr.serviceName,
		Port: port,
		Tags: []string{"album", "image", "media"},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/health", sr.serviceName, sr.servicePort),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}, nil
}

func (sr *ServiceRegistry) Register() error {
	registration, err := sr.Registration()
	if err != nil {
		return err
	}

	if err := sr.agent.ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	sr.log.Info("Service registered with Consul",
		zap.String("service", sr.serviceName), zap.String("id", sr.serviceID))
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	if err := sr.agent.ServiceDeregister(sr.serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}

	sr.log.Info("Service deregistered from Consul", zap.String("service", sr.serviceName))
	return nil
}
