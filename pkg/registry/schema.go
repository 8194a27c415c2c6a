// pkg/registry/schema.go
package registry

// RequestRegistry lists the JSON request bodies the API accepts and the
// schema each one is checked against.
type RequestRegistry struct {
	Version     string          `json:"version"`
	LastUpdated string          `json:"lastUpdated"`
	Requests    []RequestSchema `json:"requests"`
}

type RequestSchema struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Version     string                 `json:"version"`
	Routes      []string               `json:"routes"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	ErrorCodes  []string               `json:"errorCodes"`
	Tags        []string               `json:"tags"`
}

// Find returns the schema registered under id.
func (r *RequestRegistry) Find(id string) (*RequestSchema, bool) {
	for i := range r.Requests {
		if r.Requests[i].ID == id {
			return &r.Requests[i], true
		}
	}
	return nil, false
}
