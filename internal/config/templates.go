package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "service":
		return serviceTemplate, nil
	case "dev":
		return devTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serviceTemplate = `name = "shrink-store"
addr = ":9040"
cors_origins = ["http://localhost:3000"]
adapter = "base64"

[store]
backend = "fs"
root = "local/buffers"

[limits]
max_mask_bits = 67108864
max_restored_bytes = 67108864
`

const devTemplate = `name = "shrink-store-dev"
addr = "127.0.0.1:9040"
cors_origins = ["http://localhost:3000"]
adapter = "hex"

[store]
backend = "memory"
`
