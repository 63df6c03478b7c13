package config

type ServerConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	GRPC GRPCConfig `yaml:"grpc"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GRPCConfig enables the gRPC health server when Port is non-zero.
type GRPCConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}
