package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// pingCmd round-trips a ping through a running server. Because every
// command executes on the owner goroutine, a pong proves the full
// transport-dispatch path is healthy, not just the socket.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that a running server answers commands",
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		start := time.Now()
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			fmt.Printf("Connection failed: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(timeout))

		if _, err := fmt.Fprintf(conn, "{\"type\":\"ping\"}\n"); err != nil {
			fmt.Printf("Write failed: %v\n", err)
			os.Exit(1)
		}

		reader := bufio.NewReader(conn)
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("Read failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s (%s)\n", line[:len(line)-1], time.Since(start).Round(time.Millisecond))
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().String("addr", "127.0.0.1:9845", "Server address to ping")
	pingCmd.Flags().Duration("timeout", 5*time.Second, "Dial and response timeout")
}
