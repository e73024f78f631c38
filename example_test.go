package fromenv_test

import (
	"fmt"

	"github.com/stepan-anokhin/fromenv"
)

func ExampleDecodeWithFootprint() {
	type Server struct {
		Host string
		Port int `default:"8080"`
	}
	type Config struct {
		Server Server
		Debug  bool `default:"false"`
	}

	cfg, footprint, err := fromenv.DecodeWithFootprint[Config](map[string]string{
		"APP_SERVER_HOST": "example.com",
		"UNRELATED":       "ignored",
	}, fromenv.WithPrefix("APP"))
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(cfg.Server.Host, cfg.Server.Port, cfg.Debug)
	fmt.Println(footprint.Names())

	// Output:
	// example.com 8080 false
	// [APP_SERVER_HOST]
}

func ExampleDecode() {
	type Config struct {
		Hosts   []string
		Verbose *bool
	}

	cfg, err := fromenv.Decode[Config](map[string]string{
		"HOSTS_0":           "a.example.com",
		"HOSTS_1":           "b.example.com",
		"VERBOSE_IS_NONE__": "true",
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(cfg.Hosts, cfg.Verbose)

	// Output:
	// [a.example.com b.example.com] <nil>
}

func ExampleVars() {
	type Config struct {
		Host  string
		Port  int `default:"8080"`
		Tags  []string
		Debug *bool
	}

	vars, err := fromenv.Vars[Config](fromenv.WithPrefix("APP"))
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, v := range vars {
		fmt.Println(v.Name, v.Kind, v.Required)
	}

	// Output:
	// APP_HOST string true
	// APP_PORT int false
	// APP_TAGS_LEN non-negative int false
	// APP_TAGS_0 string false
	// APP_DEBUG_IS_NONE__ bool false
	// APP_DEBUG bool false
}
