package secrets

import (
	"fmt"

	"bucketdrop/logger"

	"github.com/spf13/viper"
)

// ImportFile seeds the store from a secrets file. Top-level tables map to
// record names, so a TOML file with a [service_account] table lands under
// the "service_account" key. Viper infers the format from the extension
// (toml, json, yaml). Existing records under the same names are replaced.
func ImportFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read secrets file %s: %w", path, err)
	}

	imported := 0
	for name, raw := range v.AllSettings() {
		section, ok := raw.(map[string]interface{})
		if !ok {
			logger.Warnf("Skipping secrets entry %q: not a table", name)
			continue
		}
		record := make(map[string]string, len(section))
		for k, val := range section {
			record[k] = fmt.Sprint(val)
		}
		if err := Store(name, record); err != nil {
			return fmt.Errorf("store secrets record %s: %w", name, err)
		}
		imported++
	}

	logger.Infof("Imported %d secrets record(s) from %s", imported, path)
	return nil
}
