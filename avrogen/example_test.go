package avrogen_test

import (
	"fmt"
	"log"
	"os"

	"github.com/CognitoIQ/go-avro/avrogen"
	"github.com/CognitoIQ/go-avro/internal/gen"
)

func ExampleConfig_Compile() {
	var cfg avrogen.Config
	cfg.Option(avrogen.DefaultOptions...)
	cfg.Option(avrogen.IgnoreFields("password"))

	namespaces, err := cfg.Compile(`{
		"type": "record",
		"name": "account",
		"namespace": "com.example",
		"fields": [
			{"name": "login", "type": "string"},
			{"name": "password", "type": "string"}
		]
	}`, map[string]string{"com.example": "example.accounts"})
	if err != nil {
		log.Fatal(err)
	}
	for _, ns := range namespaces {
		for _, t := range ns.Types {
			fmt.Println(ns.Name, t.Name)
		}
	}

	// Output: example.accounts Account
}

func ExampleLogOutput() {
	var cfg avrogen.Config
	cfg.Option(
		avrogen.LogOutput(log.New(os.Stderr, "", 0)),
		avrogen.LogLevel(5))
	namespaces, err := cfg.Compile(`{"type":"fixed","name":"MD5","namespace":"hash","size":16}`, nil)
	if err != nil {
		log.Fatal(err)
	}
	src, err := namespaces[0].Source(gen.GoStyle)
	if err != nil {
		log.Fatal(err)
	}
	os.Stdout.Write(src)
}
