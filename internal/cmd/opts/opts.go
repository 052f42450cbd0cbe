// Package cmdOpts holds the flag-bound option structs for each
// subcommand, mirroring the teacher's internal/cmd/opts package shape.
package cmdOpts

type MainOpts struct {
	ColorAlways  bool
	ConfigValues map[string]string
	Verbose      int
	NoConfirm    bool
	Explain      bool
}

type InstallOpts struct {
	Planner string

	Init                string
	NixBuildGroupName   string
	NixBuildGroupID     int64
	NixBuildUserPrefix  string
	NixBuildUserCount   int64
	NixBuildUserIDBase  int64
	NixPackageURL       string
	ExtraConf           []string
	Force               bool
	ModifyProfile       bool
	NoStartDaemon       bool
	Proxy               string
	SSLCertFile         string
	DiagnosticEndpoint  string
	DiagnosticAttribute string
	Determinate         bool
}

type UninstallOpts struct {
	ReceiptPath string
	Force       bool
}

type PlanOpts struct {
	Planner string
	OutFile string
}

type RepairOpts struct {
	Planner string
}

type ExportOpts struct {
	Format string
}
