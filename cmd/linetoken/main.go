// Command linetoken walks through the LINE channel access token v2.1 flow:
//
//	linetoken generate-keys
//	    produce an RSA key pair (private_key.json, public_key.json) and
//	    print the public JWK to register in the LINE Developers Console
//
//	linetoken issue-token --kid YOUR_KID --channel-id YOUR_CHANNEL_ID
//	    sign a JWT with the private key and exchange it for a channel
//	    access token
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "linetoken",
	Short:         "Obtain a LINE channel access token v2.1",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
