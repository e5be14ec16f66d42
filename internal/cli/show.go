package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kilupskalvis/hrsync/internal/config"
	"github.com/kilupskalvis/hrsync/internal/payload"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current sync payload",
	Long:  `Print the current sync payload as JSON.`,
	Run:   runShow,
}

func runShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	p, err := payload.NewStore(cfg.PayloadPath()).Read()
	if err != nil {
		if errors.Is(err, payload.ErrPayloadNotFound) {
			exitError("no sync payload found")
		}
		exitError("%v", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		exitError("failed to render payload: %v", err)
	}
	fmt.Println(string(data))
}
