// Package config provides configuration parsing for comp tools.
//
// The configuration is stored in comp.json or comp.yaml next to the files it
// applies to. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "attributes": {
//	    "key": "data-key",
//	    "ignore": "data-ignore",
//	    "checksum": "data-checksum",
//	    "identity": "id",
//	    "component": "data-component"
//	  },
//	  "recorder": {
//	    "db": "recordings.db",
//	    "saveDelay": "10s",
//	    "loadDelay": "3s"
//	  },
//	  "metrics": {
//	    "namespace": "comp"
//	  },
//	  "logLevel": "info"
//	}
//
// The same structure is accepted as YAML.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := reconcile.New[*html.Node](dom.HTML{}, cfg.ReconcileOptions()...)
package config
