package constants

// Automation role contract
const (
	DefaultRoleName  = "openstack-ml2"
	PlaybookName     = "netans switch reconciliation"
	TaskNamePrefix   = "do "
	GatherFactsNever = "no"
)

// Inventory configuration
const (
	InventorySectionPrefix = "ansible:"
	InventoryGroupAll      = "all"
	KeyMAC                 = "mac"
	KeyManageVLANs         = "manage_vlans"
)

// Host framework values
const (
	NetworkTypeVLAN    = "vlan"
	VNICTypeBaremetal  = "baremetal"
	VIFTypeOther       = "other"
	VIFTypeUnbound     = "unbound"
	VIFTypeBindFailed  = "binding_failed"
	ProvisioningEntity = "NETANS"
)

// Default VLAN handling
const (
	DefaultVLANID   = 1
	DefaultVLANName = "default"
	VLANNamePrefix  = "vlan"
)

// Executor result statuses
const (
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
	StatusTimeout    = "timeout"
)

// Environment variables
const (
	EnvConfigFiles    = "NETANS_CONFIG_FILES"
	EnvConfigDir      = "NETANS_CONFIG_DIR"
	EnvPlaybookBinary = "NETANS_ANSIBLE_PLAYBOOK"
	EnvRole           = "NETANS_ROLE"
	EnvTimeout        = "NETANS_TIMEOUT"
	EnvWorkers        = "NETANS_WORKERS"
	EnvStrictBinding  = "NETANS_STRICT_BINDING"
	EnvListen         = "NETANS_LISTEN"
	EnvDebug          = "NETANS_DEBUG"
)

// Defaults
const (
	DefaultPlaybookBinary = "ansible-playbook"
	DefaultWorkers        = 4
	DefaultListen         = "127.0.0.1:9697"
	DefaultTimeoutSeconds = 300
)

// Metrics
const (
	MetricsNamespace = "netans"
)

// Config file extensions scanned in a config directory
var ConfigFileExtensions = []string{
	".ini",
	".conf",
}
