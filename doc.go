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

/*
Package xbind binds service implementations to HTTP routers through value-level service descriptors, and
composes the resulting routers with arbitrary externally built ones into http.Server's created from
configuration files.

Basics

A ServiceDescriptor declares a service by value: its name, its callable endpoints (HTTP method, path
template, codec, and the EndpointFunc dispatching to the implementation), and the ACL entries published with
its registration metadata. Descriptors are created once per service type and never mutated.

ResolveAndBind turns a descriptor and an implementation factory into a ServiceBinding. The descriptor is
passed through a ServiceResolver to finalize runtime specific details such as concrete network ACLs; a router
is built against the declared endpoints; the implementation factory is deferred until the first request needs
it and runs exactly once, even under concurrent first access. Resolution or validation failures abort
construction entirely - no partially initialized binding is ever produced.

Routers are a match-or-decline capability: given a request they either claim it by returning a handler or
decline so that a composed router may try the next candidate. Compose chains two routers into one, preserving
documentation order and first-router-wins dispatch; WithPrefix mounts a router under a path prefix and
distributes over composition. ForService wraps a binding into a Server, and Server.AdditionalRouter attaches
externally built routers without mutating the original Server.

Hosting

Each Instance is responsible for defining configuration sections to be parsed, parsing the configuration,
starting hosts, and shutting them down. An example implementation is included in the package: InstanceImpl.
Both Instance and InstanceConfig assume that configuration will be acquired from some source and be presented
as a map of interface{}-to-interface{} values; LoadConfigMap produces that form from a YAML file.

InstanceConfig configuration sections allow the definition of an array of HostConfig. In turn each HostConfig
can listen on many interface/port combinations specified by an array of BindPointConfig's and host many
Server's by defining an array of ServiceConfig's that are resolved against a Registry of ServiceFactory's.

To deal with a single HostConfig hosting multiple services, incoming requests must be forwarded to the
correct Server. That responsibility is handled by another configurable http.Handler built by a
DispatchFactory: it asks each hosted Server's composed router, in configuration order, to match or decline,
consulting the default Server last. A reference implementation, RouterDispatchFactory, has been provided.

An optional discovery section maps service names to DNS lookups for a service discovery collaborator, and a
Registrar, when supplied, receives the ServiceInfo of every hosted service at Build time.
*/
package xbind
