package utils

import "bookline/config"

// IsProduction reports whether the app runs with a production environment.
func IsProduction() bool {
	return config.IsProduction()
}
