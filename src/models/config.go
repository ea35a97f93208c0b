package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	Storage   MStorageConfig   `yaml:"storage"`
	Network   MNetworkConfig   `yaml:"network"`
	Fincharts MFinchartsConfig `yaml:"fincharts"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int `yaml:"timeout"`
	MaxRetries     int `yaml:"retries"`
}

// MFinchartsConfig holds the upstream provider endpoints and credentials.
// Username/password are usually supplied via .env, not the yaml file.
type MFinchartsConfig struct {
	RestURI  string `yaml:"rest_uri"`
	WsURI    string `yaml:"ws_uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Provider string `yaml:"provider"`
}
