/*
	Copyright NetFoundry Inc.

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
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"

	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/foundation/v2/debugz"
	transporttls "github.com/openziti/transport/v2/tls"
	"github.com/openziti/xbind/middleware"
	"github.com/pkg/errors"
)

type ContextKey string

const (
	// NewAddressHeader is sent on every response of a bind point configured with a newAddress, notifying
	// clients that the host is or will be moving from one ip/hostname to another.
	NewAddressHeader = "xbind-new-address"
)

// HostContext provides access to xbind configuration from a request's base context: the BindPointConfig the
// request arrived on, the HostConfig it belongs to, and the InstanceConfig values.
type HostContext struct {
	BindPoint  *BindPointConfig
	HostConfig *HostConfig
	Config     *InstanceConfig
}

type namedHttpServer struct {
	*http.Server
	ServiceBindingList []string
	BindPointConfig    *BindPointConfig
	HostConfig         *HostConfig
	InstanceConfig     *InstanceConfig
}

func (s namedHttpServer) NewBaseContext(_ net.Listener) context.Context {
	hostContext := &HostContext{
		BindPoint:  s.BindPointConfig,
		HostConfig: s.HostConfig,
		Config:     s.InstanceConfig,
	}

	ctx := context.Background()
	ctx = context.WithValue(ctx, HostContextKey, hostContext)

	return ctx
}

// Host represents all the http.Server's and http.Handler's necessary to run a single xbind.HostConfig
type Host struct {
	DefaultHttpHandlerProviderImpl
	HttpServers    []*namedHttpServer
	Servers        []*Server
	logWriter      *io.PipeWriter
	Handle         http.Handler
	OnHandlerPanic func(writer http.ResponseWriter, request *http.Request, panicVal interface{})
	HostConfig     *HostConfig
}

// NewHost creates a new Host from a HostConfig. All hosted Server instances are built from the supplied
// Instance's Registry and composed into one http.Handler by its DispatchFactory. Any error aborts
// construction entirely: no partially initialized Host is produced.
func NewHost(instance Instance, hostConfig *HostConfig) (*Host, error) {
	logWriter := pfxlog.Logger().Writer()

	tlsConfig := hostConfig.Identity.ServerTLSConfig()
	tlsConfig.ClientAuth = tls.RequestClientCert
	tlsConfig.MinVersion = uint16(hostConfig.Options.MinTLSVersion)
	tlsConfig.MaxVersion = uint16(hostConfig.Options.MaxTLSVersion)

	host := &Host{
		logWriter:   logWriter,
		HttpServers: []*namedHttpServer{},
		HostConfig:  hostConfig,
	}

	host.SetParent(instance)

	var servers []*Server
	var bindingList []string

	for _, service := range hostConfig.Services {
		factory := instance.GetRegistry().Get(service.Binding())

		if factory == nil {
			return nil, errors.Errorf("service binding [%s] has no associated factory registered", service.Binding())
		}

		server, err := factory.New(hostConfig, service.Options())

		if err != nil {
			return nil, errors.Wrapf(err, "encountered error building server for service binding [%s]", service.Binding())
		}

		if prefix := service.Prefix(); prefix != "" {
			server = server.WithPrefix(prefix)
		}

		servers = append(servers, server)
		bindingList = append(bindingList, service.Binding())
	}

	host.Servers = servers

	dispatchHandler, err := instance.GetDispatchFactory().Build(servers)

	if err != nil {
		return nil, fmt.Errorf("error creating host: %v", err)
	}

	dispatchHandler.SetParent(host)

	for _, bindPoint := range hostConfig.BindPoints {
		namedServer := &namedHttpServer{
			ServiceBindingList: bindingList,
			HostConfig:         hostConfig,
			BindPointConfig:    bindPoint,
			InstanceConfig:     instance.GetConfig(),
			Server: &http.Server{
				Addr:         bindPoint.InterfaceAddress,
				WriteTimeout: hostConfig.Options.WriteTimeout,
				ReadTimeout:  hostConfig.Options.ReadTimeout,
				IdleTimeout:  hostConfig.Options.IdleTimeout,
				Handler:      host.wrapHandler(bindPoint, dispatchHandler),
				TLSConfig:    tlsConfig,
				ErrorLog:     log.New(logWriter, "", 0),
			},
		}

		namedServer.BaseContext = namedServer.NewBaseContext

		host.HttpServers = append(host.HttpServers, namedServer)
	}

	for _, mutator := range instance.GetConfig().Options.HostMutators {
		if err = mutator(instance, hostConfig, host); err != nil {
			return nil, fmt.Errorf("encountered error mutating host instance: %v", err)
		}
	}

	return host, nil
}

// ServiceInfos returns the registration metadata of every hosted service, in configuration order.
func (host *Host) ServiceInfos() []ServiceInfo {
	var infos []ServiceInfo

	for _, server := range host.Servers {
		infos = append(infos, server.ServiceInfo())
	}

	return infos
}

func (host *Host) wrapHandler(point *BindPointConfig, handler http.Handler) http.Handler {
	//innermost/bottom -> outermost/top
	handler = host.wrapSetNewAddressHeader(point, handler)
	handler = host.wrapPanicRecovery(handler)
	handler = middleware.NewCompressionHandler(handler)
	handler = middleware.NewRequestIDHandler(handler)
	return handler
}

// wrapPanicRecovery wraps a http.Handler with another http.Handler that provides recovery.
func (host *Host) wrapPanicRecovery(handler http.Handler) http.Handler {
	wrappedHandler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		defer func() {
			if panicVal := recover(); panicVal != nil {
				if host.OnHandlerPanic != nil {
					host.OnHandlerPanic(writer, request, panicVal)
					return
				}
				pfxlog.Logger().Errorf("panic caught by host handler: %v\n%v", panicVal, debugz.GenerateLocalStack())
			}
		}()

		handler.ServeHTTP(writer, request)
	})

	return wrappedHandler
}

// wrapSetNewAddressHeader will check to see if the bindPoint is configured to advertise a "new address". If
// so the value is added to the NewAddressHeader which will be sent out on every response. Clients can check
// this header to be notified that the host is or will be moving from one ip/hostname to another. When the
// new address value is set, both the old and new addresses should be valid as the clients will begin using
// the new address on their next connect.
func (host *Host) wrapSetNewAddressHeader(point *BindPointConfig, handler http.Handler) http.Handler {
	wrappedHandler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if point.NewAddress != "" {
			address := "https://" + point.NewAddress
			writer.Header().Set(NewAddressHeader, address)
		}

		handler.ServeHTTP(writer, request)
	})

	return wrappedHandler
}

// Start the host and all underlying http.Server's
func (host *Host) Start() error {
	logger := pfxlog.Logger()

	for _, httpServer := range host.HttpServers {
		logger.Infof("starting host to listen and serve tls on %s for host %s with services: %v", httpServer.Addr, httpServer.HostConfig.Name, httpServer.ServiceBindingList)

		cfg := httpServer.TLSConfig
		// make sure to listen to the expected protocols
		cfg.NextProtos = append(cfg.NextProtos, "h2", "http/1.1", "")
		listener, err := transporttls.ListenTLS(httpServer.Addr, httpServer.HostConfig.Name, cfg)
		if err != nil {
			return fmt.Errorf("error listening: %s", err)
		}
		err = httpServer.Serve(listener)

		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %s", err)
		}
	}

	return nil
}

// Shutdown stops the host and all underlying http.Server's
func (host *Host) Shutdown(ctx context.Context) {
	_ = host.logWriter.Close()

	for _, httpServer := range host.HttpServers {
		localServer := httpServer
		func() {
			_ = localServer.Shutdown(ctx)
		}()
	}
}
