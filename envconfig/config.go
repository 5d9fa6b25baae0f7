// config.go - Basiszugriff auf Environment-Variablen
//
// Dieses Modul enthaelt nur den rohen Getter, auf dem die Getter-Fabriken
// in config_utils.go (Bool/String/Uint) und config_features.go (Geraete-
// Sichtbarkeitsvariablen) aufbauen.
package envconfig

import (
	"os"
	"strings"
)

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
