package libnftmarket

import (
	"fmt"

	"github.com/EllipX/libnftmarket/nftbase"
	"github.com/KarpelesLab/apirouter"
)

// Methods exposed to the application to setup an environment

// MakeRPC generates and return a socket
func MakeRPC(dataDir string) (int, error) {
	e, err := nftbase.InitEnv(dataDir)
	if err != nil {
		return -1, fmt.Errorf("failed to init env: %w", err)
	}
	r, err := nftbase.DefaultRouter(e)
	if err != nil {
		return -1, fmt.Errorf("failed to init router: %w", err)
	}

	return apirouter.MakeJsonSocketFD(map[string]any{"@env": e, "@router": r})
}

// MakeSocket creates a socket
func MakeSocket(dataDir, socketName string) error {
	e, err := nftbase.InitEnv(dataDir)
	if err != nil {
		return fmt.Errorf("failed to init env: %w", err)
	}
	r, err := nftbase.DefaultRouter(e)
	if err != nil {
		return fmt.Errorf("failed to init router: %w", err)
	}

	return apirouter.MakeJsonUnixListener(socketName, map[string]any{"@env": e, "@router": r})
}
