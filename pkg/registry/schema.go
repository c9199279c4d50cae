// pkg/registry/schema.go
package registry

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one job worker as modelled in the BPMN processes.
type Activity struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"displayName"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	Version              string   `json:"version"`
	TaskType             string   `json:"taskType"`
	ImplementationStatus string   `json:"implementationStatus"`
	Inputs               []string `json:"inputs"`
	Outputs              []string `json:"outputs"`
	ErrorCodes           []string `json:"errorCodes"`
	Timeout              string   `json:"timeout"`
	Retries              int      `json:"retries"`
	Tags                 []string `json:"tags"`
}
