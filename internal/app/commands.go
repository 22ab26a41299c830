package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/murmurapp/murmur-go/pkg/murmursdk"
	"github.com/murmurapp/murmur-go/pkg/slogx"
)

// command binds a subcommand name to its protection level and handler. The
// guard runs before the handler, so handlers can assume an authenticated
// session wherever the access level demands one.
type command struct {
	access  murmursdk.Access
	summary string
	run     func(app *Application, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":    {murmursdk.AccessPublic, "log in with email and password", (*Application).cmdLogin},
	"register": {murmursdk.AccessPublic, "create an account", (*Application).cmdRegister},
	"logout":   {murmursdk.AccessPublic, "discard the stored session", (*Application).cmdLogout},
	"whoami":   {murmursdk.AccessPublic, "show the resolved session", (*Application).cmdWhoami},
	"feed":     {murmursdk.AccessPublic, "list posts near you", (*Application).cmdFeed},
	"show":     {murmursdk.AccessPublic, "show one post with its comments", (*Application).cmdShow},
	"create":   {murmursdk.AccessProtected, "create a post", (*Application).cmdCreate},
	"delete":   {murmursdk.AccessProtected, "delete your own post", (*Application).cmdDelete},
	"comment":  {murmursdk.AccessProtected, "comment on a post", (*Application).cmdComment},
	"uncomment": {
		murmursdk.AccessProtected, "delete your own comment", (*Application).cmdUncomment,
	},
	"vote":     {murmursdk.AccessProtected, "vote on a post, repeat to undo", (*Application).cmdVote},
	"report":   {murmursdk.AccessProtected, "report a post for moderation", (*Application).cmdReport},
	"my-posts": {murmursdk.AccessProtected, "list your own posts", (*Application).cmdMyPosts},
	"reports":  {murmursdk.AccessAdminOnly, "list open moderation reports", (*Application).cmdReports},
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: murmur <command> [flags]")
	fmt.Fprintln(os.Stderr)

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, commands[name].summary)
	}
}

// currentUser returns the authenticated profile. The guard admits anonymous
// sessions only to public commands, so a miss here is a programming error on
// the command table, not a user mistake.
func (app *Application) currentUser() (*murmursdk.User, error) {
	snap := app.session.Snapshot()
	if snap.User == nil {
		return nil, fmt.Errorf("no authenticated user")
	}
	return snap.User, nil
}

func (app *Application) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.session.Login(ctx, *email, *password); err != nil {
		var authErr *murmursdk.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("%s", authErr.Message)
		}
		return err
	}

	user, err := app.currentUser()
	if err != nil {
		return fmt.Errorf("logged in, but the profile could not be resolved")
	}

	fmt.Printf("Logged in as %s\n", user.Alias)
	return nil
}

func (app *Application) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	alias := fs.String("alias", "", "display alias (generated when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := murmursdk.RegisterRequest{Email: *email, Password: *password, Alias: *alias}
	if err := app.session.Register(ctx, req); err != nil {
		var authErr *murmursdk.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("%s", authErr.Message)
		}
		return err
	}

	fmt.Println("Account created. Run 'murmur login' to sign in.")
	return nil
}

func (app *Application) cmdLogout(ctx context.Context, args []string) error {
	app.session.Logout()
	fmt.Println("Logged out.")
	return nil
}

func (app *Application) cmdWhoami(ctx context.Context, args []string) error {
	snap := app.session.Snapshot()
	if snap.Status != murmursdk.StatusAuthenticated {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("%s (%s)\n", snap.User.Alias, snap.User.Email)
	if snap.User.Role == murmursdk.RoleAdmin {
		fmt.Println("Role: admin")
	}
	return nil
}

func (app *Application) cmdFeed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	pages := fs.Int("pages", 1, "number of pages to fetch")
	size := fs.Int("size", app.cfg.PageSize, "posts per page")
	search := fs.String("search", "", "full-text filter")
	radius := fs.Int("radius", 0, "radius in km, requires -lat and -lon")
	lat := fs.Float64("lat", 0, "latitude for the radius filter")
	lon := fs.Float64("lon", 0, "longitude for the radius filter")
	tags := fs.String("tags", "", "comma-separated tag filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := murmursdk.PostQuery{Size: *size, Search: *search, Radius: *radius}
	if *radius > 0 {
		query.Latitude = lat
		query.Longitude = lon
	}
	if *tags != "" {
		query.Tags = strings.Split(*tags, ",")
	}

	log := slogx.FromContext(ctx)

	var pager murmursdk.Pager[murmursdk.Post]
	for i := 0; i < *pages; i++ {
		query.Page = pager.NextPage()
		log.Debug("fetching feed page", "page", query.Page)
		page, err := app.client.ListPosts(ctx, query)
		if err != nil {
			return err
		}
		pager.Apply(page)
		if !pager.HasMore() {
			break
		}
	}

	printPosts(pager.Items())
	if pager.HasMore() {
		fmt.Println("More posts available; increase -pages to load them.")
	}
	return nil
}

func (app *Application) cmdShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.String("id", "", "post id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	post, err := app.client.GetPost(ctx, *id)
	if err != nil {
		if errors.Is(err, murmursdk.ErrNotFound) {
			return fmt.Errorf("post %s does not exist or has expired", *id)
		}
		return err
	}

	printPosts([]murmursdk.Post{*post})

	comments, err := app.client.ListComments(ctx, post.ID, 0, app.cfg.PageSize)
	if err != nil {
		return err
	}
	for _, c := range comments.Content {
		fmt.Printf("  [%s] %s  (%s)\n", c.ID, c.Text, c.CreatedAt)
	}
	return nil
}

func (app *Application) cmdCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	text := fs.String("text", "", "post text")
	lat := fs.Float64("lat", 0, "latitude")
	lon := fs.Float64("lon", 0, "longitude")
	located := fs.Bool("here", false, "attach the -lat/-lon location")
	tags := fs.String("tags", "", "comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := app.currentUser()
	if err != nil {
		return err
	}

	req := murmursdk.PostCreateRequest{UserID: user.ID, Text: *text}
	if *located {
		req.Latitude = lat
		req.Longitude = lon
	}
	if *tags != "" {
		req.Tags = strings.Split(*tags, ",")
	}

	// Remaining arguments are image files to attach.
	var images []murmursdk.ImageUpload
	var closers []*os.File
	defer func() {
		for _, f := range closers {
			_ = f.Close()
		}
	}()
	for _, path := range fs.Args() {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open image: %w", err)
		}
		closers = append(closers, f)
		images = append(images, murmursdk.ImageUpload{Name: filepath.Base(path), Content: f})
	}

	slogx.FromContext(ctx).Debug("creating post", "images", len(images))

	post, err := app.client.CreatePost(ctx, req, images)
	if err != nil {
		return err
	}

	fmt.Printf("Posted %s\n", post.ID)
	return nil
}

func (app *Application) cmdDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "post id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := app.currentUser()
	if err != nil {
		return err
	}

	if err := app.client.DeletePost(ctx, *id, user.ID); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func (app *Application) cmdComment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("comment", flag.ContinueOnError)
	post := fs.String("post", "", "post id")
	text := fs.String("text", "", "comment text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := app.currentUser()
	if err != nil {
		return err
	}

	req := murmursdk.CommentCreateRequest{PostID: *post, UserID: user.ID, Text: *text}
	comment, err := app.client.CreateComment(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Commented %s\n", comment.ID)
	return nil
}

func (app *Application) cmdUncomment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("uncomment", flag.ContinueOnError)
	id := fs.String("id", "", "comment id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := app.currentUser()
	if err != nil {
		return err
	}

	if err := app.client.DeleteComment(ctx, *id, user.ID); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func (app *Application) cmdVote(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("vote", flag.ContinueOnError)
	post := fs.String("post", "", "post id")
	down := fs.Bool("down", false, "downvote instead of upvote")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := app.currentUser()
	if err != nil {
		return err
	}

	// The standing vote decides whether this gesture casts or removes.
	current, err := app.client.GetPost(ctx, *post)
	if err != nil {
		if errors.Is(err, murmursdk.ErrNotFound) {
			return fmt.Errorf("post %s does not exist or has expired", *post)
		}
		return err
	}

	voteType := murmursdk.VoteUp
	if *down {
		voteType = murmursdk.VoteDown
	}

	result, err := app.client.ToggleVote(ctx, *post, user.ID, current.CurrentUserVote, voteType)
	if err != nil {
		return err
	}

	switch {
	case result == nil:
		fmt.Println("Vote removed.")
	case *result == murmursdk.VoteUp:
		fmt.Println("Upvoted.")
	default:
		fmt.Println("Downvoted.")
	}
	return nil
}

func (app *Application) cmdReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	post := fs.String("post", "", "post id")
	reason := fs.String("reason", "", "why this post should be reviewed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := app.currentUser()
	if err != nil {
		return err
	}

	req := murmursdk.ReportCreateRequest{PostID: *post, UserID: user.ID, Reason: *reason}
	if err := app.client.CreateReport(ctx, req); err != nil {
		return err
	}

	fmt.Println("Reported. A moderator will take a look.")
	return nil
}

func (app *Application) cmdMyPosts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("my-posts", flag.ContinueOnError)
	page := fs.Int("page", 0, "page index")
	size := fs.Int("size", app.cfg.PageSize, "posts per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	posts, err := app.client.ListMyPosts(ctx, *page, *size)
	if err != nil {
		return err
	}

	printPosts(posts.Content)
	if !posts.Last {
		fmt.Printf("More posts available; pass -page %d for the next page.\n", posts.Page+1)
	}
	return nil
}

func (app *Application) cmdReports(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reports", flag.ContinueOnError)
	page := fs.Int("page", 0, "page index")
	size := fs.Int("size", app.cfg.PageSize, "reports per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reports, err := app.client.ListReports(ctx, *page, *size)
	if err != nil {
		return err
	}

	for _, r := range reports.Content {
		fmt.Printf("[%s] post=%s status=%s  %s\n", r.ID, r.PostID, r.Status, r.Reason)
	}
	if len(reports.Content) == 0 {
		fmt.Println("No open reports.")
	}
	return nil
}

func printPosts(posts []murmursdk.Post) {
	if len(posts) == 0 {
		fmt.Println("No posts.")
		return
	}

	for _, p := range posts {
		vote := ""
		if p.CurrentUserVote != nil {
			if *p.CurrentUserVote == murmursdk.VoteUp {
				vote = " [your +1]"
			} else {
				vote = " [your -1]"
			}
		}

		fmt.Printf("[%s] %s\n", p.ID, p.Text)
		fmt.Printf("    +%d/-%d  %d comments  posted %s  expires %s%s\n",
			p.Upvotes, p.Downvotes, p.CommentCount, p.CreatedAt, p.ExpiresAt, vote)
		if p.Tag != "" {
			fmt.Printf("    #%s\n", p.Tag)
		}
	}
}
