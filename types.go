package wink

import (
	"net/http"
	"slices"
)

// Credentials identify the application and the Wink account.
type Credentials struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Username     string `yaml:"username"`
	Passphrase   string `yaml:"password"`
}

// Device is a Wink device record classified by NormalizeDevice.
type Device struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
	// Path is the device's resource path, "/" + Type + "s/" + ID.
	Path  string    `json:"path"`
	Props RawObject `json:"props"`
}

// DesiredState returns the device's desired_state object, if any.
func (d *Device) DesiredState() (RawObject, bool) {
	return d.Props.Object("desired_state")
}

// LastReading returns the device's last_reading object, if any.
func (d *Device) LastReading() (RawObject, bool) {
	return d.Props.Object("last_reading")
}

// expectedStatus lists the status codes accepted as success for each method.
var expectedStatus = map[string][]int{
	http.MethodGet:    {http.StatusOK},
	http.MethodPut:    {http.StatusOK},
	http.MethodPost:   {http.StatusOK, http.StatusCreated, http.StatusAccepted},
	http.MethodDelete: {http.StatusOK},
}

// ExpectedStatus reports whether code is a success status for method.
func ExpectedStatus(method string, code int) bool {
	return slices.Contains(expectedStatus[method], code)
}
