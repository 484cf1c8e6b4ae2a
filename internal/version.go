package internal

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/baalimago/multibot/internal/models"
	"github.com/baalimago/multibot/internal/utils"
)

// Set with buildflag if built in pipeline and not using go install
var (
	BuildVersion  = ""
	BuildChecksum = ""
)

func printVersion() (models.Querier, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, errors.New("failed to read build info")
	}
	version := BuildVersion
	if version == "" {
		version = bi.Main.Version
	}
	fmt.Println("version: " + version)
	if BuildChecksum != "" {
		fmt.Println("checksum: " + BuildChecksum)
	}
	for _, dep := range bi.Deps {
		fmt.Printf("%s %s\n", dep.Path, dep.Version)
	}
	return nil, utils.ErrUserInitiatedExit
}
