package domain

// License is one entry in the administrative license list. IDs are assigned
// by the service on add and are the handle for deletion.
type License struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LicenseKey string `json:"license_key"`
}
