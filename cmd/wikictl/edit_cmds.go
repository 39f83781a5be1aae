package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/binia1/hyobinwiki/internal/auth"
	"github.com/binia1/hyobinwiki/internal/config"
	"github.com/binia1/hyobinwiki/internal/domain"
	"github.com/binia1/hyobinwiki/internal/editor"
	"github.com/binia1/hyobinwiki/internal/service/wiki"
	"github.com/binia1/hyobinwiki/pkg/ctxutil"
)

var (
	editFile     string
	editSummary  string
	editImageURL string
	editCaption  string
	editWrap     string
	editToken    string

	tokenSubject   string
	tokenAnonymous bool
)

var editCmd = &cobra.Command{
	Use:   "edit <title>",
	Short: "Save new content for an article",
	Long: `Save new content for an article. Content is read from --file, or from
stdin when --file is "-". --wrap applies a toolbar action to the whole text,
and --image appends a figure at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.close()

		id, err := sessionIdentity(ws.cfg, editToken)
		if err != nil {
			return err
		}
		ctx := ctxutil.WithIdentity(cmd.Context(), id)

		title := args[0]
		var current *domain.Article
		if a, ok := ws.svc.Article(title); ok {
			current = &a
		}
		session := wiki.NewEditSession(ws.svc, title, current)
		session.SwitchTab(wiki.TabEdit)

		if editFile != "" {
			text, err := readContent(cmd.InOrStdin(), editFile)
			if err != nil {
				return err
			}
			session.Buffer().SetText(text)
		}
		if err := applyEdits(session.Buffer(), editWrap, editImageURL, editCaption); err != nil {
			return err
		}
		session.SetSummary(editSummary)

		saved, err := session.Save(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", session.Notice(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (r%d)\n", session.Notice(), saved.History[0].Rev)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a pre-issued session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		id := domain.Identity{Subject: uuid.New(), IsAnonymous: tokenAnonymous}
		if tokenSubject != "" {
			if id.Subject, err = uuid.Parse(tokenSubject); err != nil {
				return fmt.Errorf("invalid --subject: %w", err)
			}
		}

		token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL).GenerateToken(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

// sessionIdentity resolves who the CLI writes as: the given token, then the
// configured initial token, then a fresh anonymous subject.
func sessionIdentity(cfg *config.Config, token string) (domain.Identity, error) {
	if token == "" {
		token = cfg.Auth.InitialToken
	}
	if token == "" {
		return domain.Identity{Subject: uuid.New(), IsAnonymous: true}, nil
	}

	id, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL).ValidateToken(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return id, nil
}

func readContent(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}

// applyEdits runs the toolbar and image steps on buf in order.
func applyEdits(buf *editor.Buffer, wrap, imageURL, caption string) error {
	if wrap != "" {
		action, err := editor.ActionByName(wrap)
		if err != nil {
			return err
		}
		buf.Select(0, len([]rune(buf.Text())))
		action.Apply(buf)
	}

	if strings.TrimSpace(imageURL) != "" {
		buf.MoveCaret(len([]rune(buf.Text())))
		task := editor.NewImageTask(buf)
		if err := task.SubmitURL(imageURL); err != nil {
			return err
		}
		if err := task.SubmitCaption(caption); err != nil {
			return err
		}
		if task.Step() != editor.Done {
			return errors.New("image was not inserted")
		}
	}
	return nil
}

func init() {
	editCmd.Flags().StringVarP(&editFile, "file", "f", "", `Content file ("-" for stdin); defaults to the current content`)
	editCmd.Flags().StringVarP(&editSummary, "summary", "m", "", "Edit summary")
	editCmd.Flags().StringVar(&editImageURL, "image", "", "Append a figure with this image URL")
	editCmd.Flags().StringVar(&editCaption, "caption", "", "Caption for --image")
	editCmd.Flags().StringVar(&editWrap, "wrap", "", "Toolbar action applied to the whole text (bold, italic, h2, h3, list)")
	editCmd.Flags().StringVar(&editToken, "token", "", "Session token to write as (defaults to auth.initial_token)")

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Subject UUID (random when empty)")
	tokenCmd.Flags().BoolVar(&tokenAnonymous, "anonymous", false, "Issue an anonymous session token")

	rootCmd.AddCommand(editCmd, tokenCmd)
}
