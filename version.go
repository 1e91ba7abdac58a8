package tendril

// Version is the module version reported by the CLI and the service
// adapters. Release tooling stamps it at tag time.
var Version = "0.3.0-dev"
