// Package config provides configuration parsing for vspec test runs.
//
// The configuration is stored in vspec.json (or vspec.yaml) at the module
// root or any parent of the package under test. Every field is optional.
//
// # Configuration File Structure
//
//	{
//	  "markerPrefix": "spy-",
//	  "containerTag": "div",
//	  "waitTimeout": "5s",
//	  "logLevel": "warn",
//	  "debug": false,
//	  "color": true,
//	  "metrics": {
//	    "enabled": false,
//	    "namespace": "vspec"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "vspec"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    t.Fatal(err)
//	}
//	fmt.Println("Wait timeout:", cfg.WaitTimeoutDuration())
//
// VSPEC_CONFIG names an explicit file; VSPEC_DEBUG forces debug logging.
package config
