package main

import (
	"flag"
	"log"

	"github.com/jozzzzep/shrink/internal/config"
)

func main() {
	kind := flag.String("kind", "service", "config kind: service|dev")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to cmd/storectl/config.toml)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = "cmd/storectl/config.toml"
		}
		if _, err := config.LoadServiceConfig(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s", path)
		return
	}

	target := *output
	if target == "" {
		target = "cmd/storectl/config.toml"
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
