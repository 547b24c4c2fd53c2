package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"rag-console/internal/model"
	"rag-console/internal/service"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func runLogin(ctx context.Context, c *CLI, args []string) error {
	fs := newFlagSet("login")
	username := fs.String("u", "", "username")
	if err := parse(fs, args); err != nil {
		return err
	}

	name := strings.TrimSpace(*username)
	if name == "" {
		var err error
		if name, err = c.prompt("Username: "); err != nil {
			return fmt.Errorf("read username: %w", err)
		}
	}

	password, err := c.password()
	if err != nil {
		return err
	}

	auth := service.NewAuthService(c.api.Auth(), c.tokens)
	if err := auth.Login(ctx, name, password); err != nil {
		return errors.New(service.LoginErrorMessage(err))
	}

	user, err := auth.CurrentUser(ctx)
	if err != nil {
		fmt.Fprintln(c.out, "Logged in.")
		return nil
	}

	fmt.Fprintf(c.out, "Logged in as %s (%s).\n", user.Username, user.Email)
	return nil
}

func runLogout(ctx context.Context, c *CLI, _ []string) error {
	if err := service.NewAuthService(c.api.Auth(), c.tokens).Logout(ctx); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Logged out.")
	return nil
}

func runWhoami(ctx context.Context, c *CLI, _ []string) error {
	user, err := service.NewAuthService(c.api.Auth(), c.tokens).CurrentUser(ctx)
	if err != nil {
		return err
	}

	role := "user"
	if user.IsSuperuser {
		role = "admin"
	}
	fmt.Fprintf(c.out, "%s <%s> %s\n", user.Username, user.Email, role)
	return nil
}

func runDocs(ctx context.Context, c *CLI, args []string) error {
	fs := newFlagSet("docs")
	selectable := fs.Bool("selectable", false, "only documents available to document chat")
	if err := parse(fs, args); err != nil {
		return err
	}

	svc := service.NewDocumentService(c.api.Documents(), nil, c.allowedExtensions)

	var (
		documents []model.Document
		err       error
	)
	if *selectable {
		documents, err = svc.Selectable(ctx)
	} else {
		documents, err = svc.List(ctx)
	}
	if err != nil {
		return err
	}

	printDocuments(c.out, documents)
	return nil
}

func printDocuments(w io.Writer, documents []model.Document) {
	if len(documents) == 0 {
		fmt.Fprintln(w, "No documents.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tSTATUS\tPOLICY\tUPLOADED")
	for _, doc := range documents {
		policy := ""
		if doc.IsCompanyPolicy {
			policy = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			doc.ID, doc.OriginalFilename, doc.FileType, doc.FileSize, doc.Status, policy,
			doc.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func runUpload(ctx context.Context, c *CLI, args []string) error {
	fs := newFlagSet("upload")
	policy := fs.Bool("policy", false, "mark as company policy")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	path := fs.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	svc := service.NewDocumentService(c.api.Documents(), nil, c.allowedExtensions)
	doc, _, err := svc.Upload(ctx, filepath.Base(path), f, *policy)
	var refresh *service.RefreshError
	if err != nil && !errors.As(err, &refresh) {
		return err
	}

	fmt.Fprintf(c.out, "Uploaded %s as %s (status %s).\n", doc.OriginalFilename, doc.ID, doc.Status)
	return nil
}

func runRemoveDocument(ctx context.Context, c *CLI, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errUsage
	}

	svc := service.NewDocumentService(c.api.Documents(), nil, c.allowedExtensions)
	var refresh *service.RefreshError
	if _, err := svc.Delete(ctx, args[0]); err != nil && !errors.As(err, &refresh) {
		return err
	}

	fmt.Fprintf(c.out, "Deleted document %s.\n", args[0])
	return nil
}

func runUsers(ctx context.Context, c *CLI, _ []string) error {
	users, err := service.NewUserService(c.api.Users(), nil).List(ctx)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Fprintln(c.out, "No users.")
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tACTIVE\tADMIN")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", u.ID, u.Username, u.Email, u.IsActive, u.IsSuperuser)
	}
	return tw.Flush()
}

// runSettings prints the settings, or with key=value pairs merges them over
// the current values and saves all six fields.
func runSettings(ctx context.Context, c *CLI, args []string) error {
	svc := service.NewSettingsService(c.api.Settings(), nil)

	current, err := svc.Get(ctx)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		printSettings(c.out, current)
		return nil
	}

	form := settingsValues(current)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || !form.Has(key) {
			return fmt.Errorf("%w: %q is not a settings assignment", errUsage, arg)
		}
		form.Set(key, value)
	}

	submitted, err := service.ParseSettingsForm(form)
	if err != nil {
		return err
	}

	saved, err := svc.Save(ctx, submitted.FullUpdate())
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, service.SettingsSavedMessage)
	printSettings(c.out, saved)
	return nil
}

func settingsValues(s model.RAGSettings) url.Values {
	return url.Values{
		"chunk_size":    {strconv.Itoa(s.ChunkSize)},
		"chunk_overlap": {strconv.Itoa(s.ChunkOverlap)},
		"temperature":   {strconv.FormatFloat(s.Temperature, 'g', -1, 64)},
		"top_p":         {strconv.FormatFloat(s.TopP, 'g', -1, 64)},
		"top_k":         {strconv.Itoa(s.TopK)},
		"model_name":    {s.ModelName},
	}
}

func printSettings(w io.Writer, s model.RAGSettings) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "chunk_size\t%d\n", s.ChunkSize)
	fmt.Fprintf(tw, "chunk_overlap\t%d\n", s.ChunkOverlap)
	fmt.Fprintf(tw, "temperature\t%g\n", s.Temperature)
	fmt.Fprintf(tw, "top_p\t%g\n", s.TopP)
	fmt.Fprintf(tw, "top_k\t%d\n", s.TopK)
	fmt.Fprintf(tw, "model_name\t%s\n", s.ModelName)
	_ = tw.Flush()
}

func runChat(ctx context.Context, c *CLI, args []string) error {
	fs := newFlagSet("chat")
	documentID := fs.String("doc", "", "document id")
	policy := fs.Bool("policy", false, "ask the company policy documents")
	if err := parse(fs, args); err != nil {
		return err
	}

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	hasDoc := strings.TrimSpace(*documentID) != ""
	if query == "" || hasDoc == *policy {
		return errUsage
	}

	mode := service.ChatModeDocument
	if *policy {
		mode = service.ChatModePolicy
	}

	transcript, err := service.NewChatService(c.api.Chat(), nil).Ask(ctx, mode, *documentID, query, nil)
	if err != nil {
		return err
	}

	reply := transcript[len(transcript)-1]
	fmt.Fprintln(c.out, reply.Content)
	if len(reply.Sources) > 0 {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "Sources:")
		for _, src := range reply.Sources {
			fmt.Fprintf(c.out, "  - %s\n", src)
		}
	}

	return nil
}
