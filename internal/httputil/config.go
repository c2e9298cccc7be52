package httputil

import "fmt"

type HTTPClientConfig struct {
	BasicAuth   *BasicAuth `json:"basicAuth,omitempty"`
	BearerToken string     `json:"bearerToken,omitempty"`
}

func (c *HTTPClientConfig) Validate() error {
	if c.BasicAuth != nil && len(c.BearerToken) > 0 {
		return fmt.Errorf("at most one of basic auth & bearer token must be configured")
	}
	return nil
}

type BasicAuth struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}
