// internal/workers/copywriting/generate-copy/models.go
package generatecopy

import "betfunnels-copy/internal/models"

// Input is the job's variables: the same body the HTTP endpoint accepts.
type Input struct {
	models.FunnelSpec
}

// Output is merged into the process instance.
type Output struct {
	CopyAll string `json:"copyAll"`
	Casino  string `json:"casino"`
}
