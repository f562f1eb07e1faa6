// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package artifact

// DefaultDomainName is the name of the domain applications join when they name none
const DefaultDomainName = "default"

// DomainID returns the identifier of the domain called name
func DomainID(name string) string {
	return "domain/" + name
}

// ApplicationID returns the identifier of application name deployed in domainID
func ApplicationID(domainID, name string) string {
	return domainID + "/app/" + name
}

// PluginID returns the identifier of plugin name bundled by ownerID
func PluginID(ownerID, name string) string {
	return ownerID + "/plugin/" + name
}

// standalonePluginID is used until a plugin is attached to its owner
func standalonePluginID(name string) string {
	return "plugin/" + name
}
