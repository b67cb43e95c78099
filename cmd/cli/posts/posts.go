package posts

import (
	"fmt"
	"strconv"

	"github.com/crucial707/vuln-blog/cmd/cli/config"
	"github.com/crucial707/vuln-blog/cmd/cli/output"
	"github.com/crucial707/vuln-blog/cmd/cli/root"
	"github.com/crucial707/vuln-blog/internal/models"
	"github.com/spf13/cobra"
)

// InitPosts registers the posts command group and comment on the root command.
func InitPosts(rootCmd *cobra.Command) {
	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Read and write posts",
	}

	postsCmd.AddCommand(
		listCmd(),
		searchCmd(),
		showCmd(),
		createCmd(),
	)

	rootCmd.AddCommand(postsCmd, commentCmd())
}

// ==========================
// LIST
// ==========================
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := config.Client().ListPosts(cmd.Context())
			if err != nil {
				return err
			}
			return printPosts(cmd, posts)
		},
	}
}

// ==========================
// SEARCH
// ==========================
func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search post titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := config.Client().SearchPosts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printPosts(cmd, posts)
		},
	}
}

// ==========================
// SHOW
// ==========================
func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a post and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			detail, err := config.Client().GetPost(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if root.JSON(cmd) {
				return output.PrintJSON(out, detail)
			}

			p := detail.Post
			fmt.Fprintf(out, "#%d %s\nby %s at %s\n\n%s\n\n", p.ID, p.Title, p.Author, p.CreatedAt, p.Content)
			rows := make([][]interface{}, 0, len(detail.Comments))
			for _, c := range detail.Comments {
				rows = append(rows, []interface{}{c.ID, c.Author, c.CreatedAt, c.Content})
			}
			output.RenderTable(out, []string{"ID", "Author", "Created", "Comment"}, rows)
			return nil
		},
	}
}

// ==========================
// CREATE
// ==========================
func createCmd() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post (requires login)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadToken(); err != nil {
				return err
			}
			id, err := config.Client().CreatePost(cmd.Context(), title, content)
			if err != nil {
				return err
			}
			if root.JSON(cmd) {
				return output.PrintJSON(cmd.OutOrStdout(), map[string]interface{}{"message": "Post created", "id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post created with id %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&content, "content", "", "post body")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

// ==========================
// COMMENT
// ==========================
func commentCmd() *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "comment <post-id>",
		Short: "Comment on a post (requires login)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := config.LoadToken(); err != nil {
				return err
			}
			id, err := config.Client().AddComment(cmd.Context(), postID, content)
			if err != nil {
				return err
			}
			if root.JSON(cmd) {
				return output.PrintJSON(cmd.OutOrStdout(), map[string]interface{}{"message": "Comment added", "id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment added with id %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "comment text")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func printPosts(cmd *cobra.Command, posts []models.Post) error {
	out := cmd.OutOrStdout()
	if root.JSON(cmd) {
		return output.PrintJSON(out, posts)
	}
	rows := make([][]interface{}, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []interface{}{p.ID, p.Title, p.Author, p.CreatedAt})
	}
	output.RenderTable(out, []string{"ID", "Title", "Author", "Created"}, rows)
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid post id %q", s)
	}
	return id, nil
}
