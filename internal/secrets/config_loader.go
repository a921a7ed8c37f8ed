package secrets

import "github.com/Strob0t/folio/internal/config"

// ConfigLoader reads the admin token hash from the YAML file at path and
// the environment, with the same precedence as the server configuration.
func ConfigLoader(path string) Loader {
	return func() (map[string]string, error) {
		auth, err := config.LoadAuth(path)
		if err != nil {
			return nil, err
		}
		return map[string]string{AdminTokenHash: auth.TokenHash}, nil
	}
}
