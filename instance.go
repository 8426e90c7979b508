/*
	Copyright NetFoundry, Inc.

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

	https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/
package xbind

import (
	"context"
	"net/http"
	"time"

	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/identity"
)

// Instance implements config.Subconfig to allow Instance implementations to be used during the normal component startup
// and configuration phase.
type Instance interface {
	DefaultHttpHandlerProvider
	Enabled() bool
	LoadConfig(cfgmap map[interface{}]interface{}) error
	Run()
	Shutdown()
	GetRegistry() Registry
	GetDispatchFactory() DispatchFactory
	GetConfig() *InstanceConfig
}

const (
	DefaultIdentitySection = "identity"
	DefaultConfigSection   = "web"
)

// InstanceImpl is a basic implementation of Instance.
type InstanceImpl struct {
	DefaultHttpHandlerProviderImpl
	Config          *InstanceConfig
	hosts           []*Host
	Registry        Registry
	DispatchFactory DispatchFactory

	// Registrar, when set, is handed the ServiceInfo of every hosted service during Build.
	Registrar Registrar
}

var _ Instance = &InstanceImpl{}

func NewDefaultInstance(registry Registry, defaultIdentity identity.Identity) *InstanceImpl {
	return &InstanceImpl{
		Registry:        registry,
		DispatchFactory: &RouterDispatchFactory{},
		Config: &InstanceConfig{
			DefaultIdentitySection: DefaultIdentitySection,
			DefaultIdentity:        defaultIdentity,
			Section:                DefaultConfigSection,
		},
	}
}

// GetRegistry returns the associated Registry
func (i *InstanceImpl) GetRegistry() Registry {
	return i.Registry
}

// GetDispatchFactory returns the associated DispatchFactory
func (i *InstanceImpl) GetDispatchFactory() DispatchFactory {
	return i.DispatchFactory
}

// GetConfig returns the associated InstanceConfig
func (i *InstanceImpl) GetConfig() *InstanceConfig {
	return i.Config
}

// Enabled returns true/false on whether this subconfig should be considered enabled
func (i *InstanceImpl) Enabled() bool {
	return i.Config.Enabled()
}

// LoadConfig handles subconfig operations for xbind.Instance components
func (i *InstanceImpl) LoadConfig(cfgmap map[interface{}]interface{}) error {
	if err := i.Config.Parse(cfgmap); err != nil {
		return err
	}

	//validate sets enabled flag to true on success
	if err := i.Config.Validate(i.Registry); err != nil {
		return err
	}

	return nil
}

// Build assembles all the xbind components from configuration and prepares to have Start() called.
func (i *InstanceImpl) Build() {
	for _, hostConfig := range i.Config.HostConfigs {
		host, err := NewHost(i, hostConfig)

		if err != nil {
			pfxlog.Logger().Fatalf("error building xbind host for %s: %v", hostConfig.Name, err)
		}

		i.hosts = append(i.hosts, host)

		if i.Registrar != nil {
			for _, info := range host.ServiceInfos() {
				if err := i.Registrar.Register(info); err != nil {
					pfxlog.Logger().Errorf("error registering service [%s]: %v", info.Name, err)
				}
			}
		}
	}
}

// Start calls Start() on all Hosts that were built by calling Build().
func (i *InstanceImpl) Start() {
	for _, host := range i.hosts {
		h := host //avoid closure scoping issues
		go func() {
			if err := h.Start(); err != nil {
				pfxlog.Logger().Errorf("error starting host %s: %v", h.HostConfig.Name, err)
			}
		}()
	}
}

// Run builds and starts the necessary xbind.Host's
func (i *InstanceImpl) Run() {
	i.Build()
	i.Start()
}

// Shutdown stops all running xbind.Host's
func (i *InstanceImpl) Shutdown() {
	for _, host := range i.hosts {
		localHost := host
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
			defer cancel()
			localHost.Shutdown(ctx)
		}()
	}
}

// DefaultHttpHandlerProvider is an interface shared by the different levels of xbind's hosting components:
// Instance, Host, and the dispatch handler. The default handler used when no hosted Server claims a request
// is resolved through the parent chain: Instance > Host > dispatch handler.
type DefaultHttpHandlerProvider interface {
	GetDefaultHttpHandler() http.Handler
	SetDefaultHttpHandler(handler http.Handler)
	SetParent(parent DefaultHttpHandlerProvider)
}

type DefaultHttpHandlerProviderImpl struct {
	Parent      DefaultHttpHandlerProvider
	HttpHandler http.Handler
}

var _ DefaultHttpHandlerProvider = &DefaultHttpHandlerProviderImpl{}

func handler404(rw http.ResponseWriter, _ *http.Request) {
	rw.WriteHeader(http.StatusNotFound)
	_, _ = rw.Write([]byte{})
}

func (d *DefaultHttpHandlerProviderImpl) GetDefaultHttpHandler() http.Handler {
	if d.HttpHandler == nil && d.Parent != nil {
		if handler := d.Parent.GetDefaultHttpHandler(); handler == nil {
			h := http.HandlerFunc(handler404)
			return &h
		} else {
			return handler
		}
	}

	return d.HttpHandler
}

func (d *DefaultHttpHandlerProviderImpl) SetDefaultHttpHandler(handler http.Handler) {
	d.HttpHandler = handler
}

func (d *DefaultHttpHandlerProviderImpl) SetParent(parent DefaultHttpHandlerProvider) {
	d.Parent = parent
}
