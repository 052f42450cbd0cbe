package settings

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// InitSystem names the service supervisor a ConfigureInitService action
// should target.
type InitSystem string

const (
	InitSystemLaunchd InitSystem = "launchd"
	InitSystemSystemd InitSystem = "systemd"
	InitSystemNone    InitSystem = "none"
)

func (i *InitSystem) UnmarshalText(text []byte) error {
	val := InitSystem(text)
	switch val {
	case InitSystemLaunchd, InitSystemSystemd, InitSystemNone:
		*i = val
		return nil
	}

	return fmt.Errorf("invalid value for init system '%s'", val)
}

// Settings is the immutable, typed bundle of user-visible install knobs
// (§3). A *Settings is built once by ParseSettings/NewSettings plus any
// `--config key=value` / flag overrides, validated, and then carried
// read-only through the rest of a run inside the process context.
type Settings struct {
	Init                InitSystem `koanf:"init"`
	NixBuildGroupName   string     `koanf:"nix_build_group_name"`
	NixBuildGroupID     int64      `koanf:"nix_build_group_id"`
	NixBuildUserPrefix  string     `koanf:"nix_build_user_prefix"`
	NixBuildUserCount   int64      `koanf:"nix_build_user_count"`
	NixBuildUserIDBase  int64      `koanf:"nix_build_user_id_base"`
	NixPackageURL       string     `koanf:"nix_package_url"`
	ExtraConf           []string   `koanf:"extra_conf"`
	Force               bool       `koanf:"force"`
	ModifyProfile       bool       `koanf:"modify_profile"`
	NoStartDaemon       bool       `koanf:"no_start_daemon"`
	Proxy               string     `koanf:"proxy"`
	SSLCertFile         string     `koanf:"ssl_cert_file"`
	DiagnosticEndpoint  string     `koanf:"diagnostic_endpoint"`
	DiagnosticAttribute string     `koanf:"diagnostic_attribution"`
	Determinate         bool       `koanf:"determinate"`

	ConfigLocation string               `koanf:"config_location"`
	UseColor       bool                 `koanf:"color"`
	NoConfirm      bool                 `koanf:"no_confirm"`
	Confirmation   ConfirmationSettings `koanf:"confirmation"`
	Explain        bool                 `koanf:"explain"`
}

type ConfirmationSettings struct {
	Always  bool                       `koanf:"always"`
	Invalid ConfirmationPromptBehavior `koanf:"invalid"`
	Empty   ConfirmationPromptBehavior `koanf:"empty"`
}

type ConfirmationPromptBehavior string

const (
	ConfirmationPromptRetry      ConfirmationPromptBehavior = "retry"
	ConfirmationPromptDefaultYes ConfirmationPromptBehavior = "default-yes"
	ConfirmationPromptDefaultNo  ConfirmationPromptBehavior = "default-no"
)

var AvailableConfirmationPromptSettings = map[string]string{
	string(ConfirmationPromptDefaultNo):  "Default to input of 'no'",
	string(ConfirmationPromptDefaultYes): "Default to input of 'yes'",
	string(ConfirmationPromptRetry):      "Retry the input function again",
}

func (c *ConfirmationPromptBehavior) UnmarshalText(text []byte) error {
	val := ConfirmationPromptBehavior(text)
	switch val {
	case ConfirmationPromptDefaultYes, ConfirmationPromptDefaultNo, ConfirmationPromptRetry:
		*c = val
		return nil
	}

	return fmt.Errorf("invalid value for ConfirmationPromptBehavior '%s'", val)
}

type DescriptionEntry struct {
	Short   string
	Long    string
	Example any
}

var SettingsDocs = map[string]DescriptionEntry{
	"init": {
		Short: "Init system to configure the Nix daemon under",
		Long:  "Selects which service supervisor ConfigureInitService targets: `launchd`, `systemd`, or `none` for daemonless/container installs.",
	},
	"nix_build_group_name": {
		Short: "Name of the Nix build group",
	},
	"nix_build_group_id": {
		Short: "GID of the Nix build group",
	},
	"nix_build_user_prefix": {
		Short: "Prefix used to name build users",
	},
	"nix_build_user_count": {
		Short: "Number of build users to create",
	},
	"nix_build_user_id_base": {
		Short: "First UID considered for build users is this value plus one",
	},
	"nix_package_url": {
		Short: "URL of the Nix package tarball to fetch",
		Long:  "The installer binary carries no embedded tarball: if unset, the unpack step has no tarball to read and the install fails there.",
	},
	"extra_conf": {
		Short: "Extra lines appended to /etc/nix/nix.conf",
	},
	"force": {
		Short: "Adopt over conflicting resources instead of failing to plan",
	},
	"modify_profile": {
		Short: "Append Nix environment sourcing to shell profile files",
	},
	"no_start_daemon": {
		Short: "Skip writing, enabling and starting the Nix daemon service",
	},
	"proxy": {
		Short: "HTTP(S) proxy URL used for the tarball and diagnostic requests",
	},
	"ssl_cert_file": {
		Short: "Path to a CA bundle used for the tarball and diagnostic requests",
	},
	"diagnostic_endpoint": {
		Short: "URL to POST a diagnostic payload to on completion",
		Long:  "Empty disables diagnostics. The payload never contains setting values, only field names.",
	},
	"diagnostic_attribution": {
		Short: "Free-form string carried through to the diagnostic payload",
	},
	"determinate": {
		Short: "Recorded in settings; the planners install the same Nix package whether or not it is set",
	},
	"config_location": {
		Short: "Where to look for the settings file by default",
	},
	"color": {
		Short: "Enable colored output",
	},
	"no_confirm": {
		Short: "Disable interactive confirmation input",
	},
	"confirmation": {
		Short: "Settings for confirmation prompts",
	},
	"confirmation.always": {
		Short: "Disable interactive confirmation input entirely",
	},
	"confirmation.empty": {
		Short: "Control confirmation prompt behavior when no input is provided",
	},
	"confirmation.invalid": {
		Short: "Control confirmation prompt behavior when invalid input is provided",
	},
	"explain": {
		Short: "Recorded in settings; no command changes its failure output when it is set",
	},
}

func NewSettings() *Settings {
	return &Settings{
		Init:               defaultInitSystem(),
		NixBuildGroupName:  defaultBuildGroupName(),
		NixBuildGroupID:    defaultBuildGroupID(),
		NixBuildUserPrefix: defaultBuildUserPrefix(),
		NixBuildUserCount:  32,
		NixBuildUserIDBase: defaultBuildGroupID(),
		ExtraConf:          []string{},
		Force:              false,
		ModifyProfile:      true,
		NoStartDaemon:      false,
		Determinate:        false,

		ConfigLocation: "/etc/nix-installer.toml",
		UseColor:       true,
		NoConfirm:      false,
		Confirmation: ConfirmationSettings{
			Always:  false,
			Invalid: ConfirmationPromptRetry,
			Empty:   ConfirmationPromptDefaultNo,
		},
		Explain: false,
	}
}

func ParseSettings(location string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(location), toml.Parser()); err != nil {
		return nil, err
	}

	cfg := NewSettings()

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func ParseSettingsFromString(input string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(input)), toml.Parser()); err != nil {
		return nil, err
	}

	cfg := NewSettings()

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

var hasWhitespaceRegex = regexp.MustCompile(`\s`)

// Validate checks cross-field invariants from §6/§4.2 that the Planner
// would otherwise reject with a PlanError. Settings validation happens
// earlier, at config-load time, so a bad value is reported before any
// probing begins.
func (cfg *Settings) Validate() SettingsErrors {
	errs := []error{}

	if cfg.NixBuildUserCount < 0 {
		errs = append(errs, SettingsError{Field: "nix_build_user_count", Message: "cannot be negative"})
	}

	for _, line := range cfg.ExtraConf {
		if len(strings.TrimSpace(line)) == 0 {
			errs = append(errs, SettingsError{Field: "extra_conf", Message: "entries cannot be empty"})
			continue
		}
		if hasWhitespaceRegex.MatchString(line) && !strings.Contains(line, "=") {
			errs = append(errs, SettingsError{Field: "extra_conf", Message: fmt.Sprintf("entry %q is not a 'key = value' nix.conf line", line)})
		}
	}

	switch cfg.Init {
	case InitSystemLaunchd, InitSystemSystemd, InitSystemNone:
	default:
		errs = append(errs, SettingsError{Field: "init", Message: fmt.Sprintf("unknown init system %q", cfg.Init)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (cfg *Settings) SetValue(key string, value string) error {
	fields := strings.Split(key, ".")
	current := reflect.ValueOf(cfg).Elem()

	for i, field := range fields {
		found := false
		for j := 0; j < current.Type().NumField(); j++ {
			fieldInfo := current.Type().Field(j)
			if fieldInfo.Tag.Get("koanf") == field {
				current = current.Field(j)
				found = true
				break
			}
		}

		if !found {
			return SettingsError{Field: field, Message: "setting not found"}
		}

		if current.Kind() == reflect.Pointer {
			if current.IsNil() {
				current.Set(reflect.New(current.Type().Elem()))
			}
			current = current.Elem()
		}

		if i == len(fields)-1 {
			if !current.CanSet() {
				return SettingsError{Field: field, Message: "cannot change value of this setting dynamically"}
			}

			switch current.Kind() {
			case reflect.String:
				current.SetString(value)
			case reflect.Bool:
				boolVal, err := strconv.ParseBool(value)
				if err != nil {
					return SettingsError{Field: field, Message: fmt.Sprintf("invalid boolean value '%s' for field", value)}
				}
				current.SetBool(boolVal)
			case reflect.Int, reflect.Int64:
				intVal, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return SettingsError{Field: field, Message: fmt.Sprintf("invalid integer value '%s' for field", value)}
				}
				current.SetInt(intVal)
			case reflect.Float64:
				floatVal, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return SettingsError{Field: field, Message: fmt.Sprintf("invalid float value '%s' for field", value)}
				}
				current.SetFloat(floatVal)
			default:
				return SettingsError{Field: field, Message: "unsupported field type"}
			}

			return nil
		}
	}

	return nil
}
