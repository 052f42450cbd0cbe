package action

// registry maps each kind's discriminator string to a constructor
// returning a zero-valued, addressable instance that UnmarshalAction can
// json.Unmarshal into. Adding a kind means adding one entry here; no
// runtime reflection over the type system is involved (§9).
var registry = map[string]func() Action{
	"create_directory":        func() Action { return &CreateDirectory{} },
	"create_file":             func() Action { return &CreateFile{} },
	"create_user":             func() Action { return &CreateUser{} },
	"create_group":            func() Action { return &CreateGroup{} },
	"delete_user":             func() Action { return &DeleteUser{} },
	"delete_group":            func() Action { return &DeleteGroup{} },
	"remove_directory":        func() Action { return &RemoveDirectory{} },
	"fetch_and_unpack_nix":    func() Action { return &FetchAndUnpackNix{} },
	"move_unpacked_nix":       func() Action { return &MoveUnpackedNix{} },
	"place_nix_configuration": func() Action { return &PlaceNixConfiguration{} },
	"configure_shell_profile": func() Action { return &ConfigureShellProfile{} },
	"configure_init_service":  func() Action { return &ConfigureInitService{} },
	"configure_systemd_unit":  func() Action { return &ConfigureSystemdUnit{} },
	"configure_selinux":       func() Action { return &ConfigureSELinux{} },
	"create_apfs_volume":      func() Action { return &CreateAPFSVolume{} },
	"create_bind_mount":       func() Action { return &CreateBindMount{} },
	"composite":               func() Action { return &Composite{} },
}
