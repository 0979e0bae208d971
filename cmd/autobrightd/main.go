package main

import (
	"os"

	"github.com/oceania/autobright/internal/log"
)

var Version = "dev"

func init() {
	// Add flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file (default $XDG_CONFIG_HOME/Oceania/autobright.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	runCmd.Flags().Bool("no-tray", false, "Do not show the tray menu")

	// Add commands to root
	rootCmd.AddCommand(versionCmd, runCmd, increaseCmd, decreaseCmd, offsetCmd, statusCmd, tuneCmd)
}

func main() {
	// Block root
	if os.Geteuid() == 0 {
		log.Fatal("This program should not be run as root. Exiting.")
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
