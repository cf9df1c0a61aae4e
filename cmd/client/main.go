package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-bill-keeper/internal/client"
	"github.com/MKhiriev/go-bill-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	if err := client.Execute(context.Background(), build, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
