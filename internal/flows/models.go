package flows

// Flow is a read-only reference record describing a named call/SMS flow.
// EnvVarRef names the environment variable that holds the flow's provider
// SID; upstream routing reads the value, the gateway never does.
type Flow struct {
	Key       string `json:"key" db:"key"`
	EnvVarRef string `json:"env_var_ref" db:"env_var_ref"`
	Active    bool   `json:"active" db:"active"`
}
