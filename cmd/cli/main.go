package main

import (
	"fmt"
	"os"

	"github.com/crucial707/vuln-blog/cmd/cli/auth"
	"github.com/crucial707/vuln-blog/cmd/cli/posts"
	"github.com/crucial707/vuln-blog/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	posts.InitPosts(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
