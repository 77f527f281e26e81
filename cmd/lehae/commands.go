// Copyright (c) 2026 Lehae. All rights reserved.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/lehae/lehae-go/internal/contact"
	"github.com/lehae/lehae-go/internal/favorites"
	"github.com/lehae/lehae-go/internal/listings"
	"github.com/lehae/lehae-go/internal/platform/constants"
	"github.com/lehae/lehae-go/internal/session"
)

// run dispatches one subcommand. Every handler renders plain text only; the
// resource clients guarantee the records they print are fully default-guarded.
func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {

	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.session.Logout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "register":
		return a.cmdRegister(ctx, args)

	case "properties":
		return a.cmdProperties(ctx, args)
	case "property":
		return a.cmdProperty(ctx, args)
	case "listings", "create", "update", "delete", "upload-image":
		if !a.session.IsLandlord() {
			return fmt.Errorf("only landlords can manage listings")
		}
		switch command {
		case "listings":
			return a.cmdMyListings(ctx)
		case "create":
			return a.cmdCreate(ctx, args)
		case "update":
			return a.cmdUpdate(ctx, args)
		case "delete":
			return a.cmdDelete(ctx, args)
		default:
			return a.cmdUploadImage(ctx, args)
		}

	case "favorites":
		return a.cmdFavorites(ctx)
	case "favorite":
		return a.cmdFavorite(ctx, args, true)
	case "unfavorite":
		return a.cmdFavorite(ctx, args, false)

	case "admin":
		return a.cmdAdmin(ctx, args)
	case "contact":
		return a.cmdContact(ctx, args)
	case "lang":
		return a.cmdLang(ctx, args)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// # Session Commands

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	username := flags.String("u", "", "username or email")
	password := flags.String("p", "", "password")
	if err := flags.Parse(args); err != nil {
		return err
	}

	user, err := a.session.Login(ctx, *username, *password)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", user.Username)
	return nil
}

func (a *app) cmdWhoami() error {
	user := a.session.Current()
	if user == nil {
		fmt.Println("Not logged in")
		return nil
	}

	fmt.Printf("%s <%s>", user.Username, user.Email)
	if user.IsLandlord {
		fmt.Print(" [landlord]")
	}
	if user.IsStaff {
		fmt.Print(" [staff]")
	}
	if user.IsVerified {
		fmt.Print(" [verified]")
	}
	fmt.Println()
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("register", flag.ContinueOnError)
	username := flags.String("u", "", "username")
	email := flags.String("e", "", "email")
	password := flags.String("p", "", "password")
	confirm := flags.String("c", "", "confirm password")
	landlord := flags.Bool("landlord", false, "register as a landlord")
	if err := flags.Parse(args); err != nil {
		return err
	}

	user, err := a.session.Register(ctx, session.RegisterInput{
		Username:        *username,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *confirm,
		IsLandlord:      *landlord,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Welcome to Lehae, %s\n", user.Username)
	return nil
}

// # Browsing Commands

func (a *app) cmdProperties(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("properties", flag.ContinueOnError)
	district := flags.String("district", "", "filter by district")
	area := flags.String("area", "", "filter by area")
	minAmount := flags.Float64("min", 0, "minimum rental amount")
	maxAmount := flags.Float64("max", 0, "maximum rental amount")
	status := flags.String("status", "all", "vacant, occupied, or all")
	limit := flags.Int("limit", 0, "maximum results")
	if err := flags.Parse(args); err != nil {
		return err
	}

	results, err := a.listings.List(ctx, listings.Filters{
		District:  *district,
		Area:      *area,
		MinAmount: *minAmount,
		MaxAmount: *maxAmount,
		Status:    *status,
		Limit:     *limit,
	})
	if err != nil {
		return err
	}

	printProperties(results)
	return nil
}

func (a *app) cmdProperty(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}

	property, err := a.listings.Get(ctx, id)
	if err != nil {
		return err
	}

	printProperties([]listings.Property{*property})
	fmt.Printf("  %s\n", property.Description)
	for _, image := range property.Images {
		fmt.Printf("  image: %s\n", image.ImageURL)
	}
	return nil
}

// # Landlord Commands

func (a *app) cmdMyListings(ctx context.Context) error {
	results, err := a.listings.List(ctx, listings.Filters{Landlord: listings.LandlordSelf})
	if err != nil {
		return err
	}

	printProperties(results)
	return nil
}

// draftFlags registers the listing draft fields on a flag set and returns a
// closure assembling the Draft after parsing.
func draftFlags(flags *flag.FlagSet) func() listings.Draft {
	area := flags.String("area", "", "area")
	district := flags.String("district", "", "district")
	amount := flags.Float64("amount", 0, "rental amount")
	deposit := flags.Float64("deposit", 0, "deposit")
	viewingFee := flags.Float64("viewing-fee", 0, "viewing fee")
	status := flags.String("status", string(listings.StatusVacant), "vacant or occupied")
	description := flags.String("description", "", "description")

	return func() listings.Draft {
		draft := listings.Draft{
			Area:         *area,
			District:     *district,
			RentalAmount: *amount,
			Status:       *status,
			Description:  *description,
		}
		if *deposit > 0 {
			draft.Deposit = deposit
		}
		if *viewingFee > 0 {
			draft.ViewingFee = viewingFee
		}
		return draft
	}
}

func (a *app) cmdCreate(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("create", flag.ContinueOnError)
	buildDraft := draftFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	property, err := a.listings.Create(ctx, buildDraft())
	if err != nil {
		return err
	}

	fmt.Printf("Created listing #%d\n", property.ID)
	return nil
}

func (a *app) cmdUpdate(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("update", flag.ContinueOnError)
	id := flags.Int("id", 0, "property id")
	buildDraft := draftFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	property, err := a.listings.Update(ctx, *id, buildDraft())
	if err != nil {
		return err
	}

	fmt.Printf("Updated listing #%d\n", property.ID)
	return nil
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	if err := a.listings.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted listing #%d\n", id)
	return nil
}

func (a *app) cmdUploadImage(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("upload-image", flag.ContinueOnError)
	id := flags.Int("id", 0, "property id")
	file := flags.String("file", "", "image file (jpeg or png)")
	current := flags.Int("current", 0, "images already on the listing")
	if err := flags.Parse(args); err != nil {
		return err
	}

	handle, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer handle.Close()

	image, err := a.listings.UploadImage(ctx, *id, *file, *current, handle)
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %s\n", image.ImageURL)
	return nil
}

// # Favorites Commands

func (a *app) cmdFavorites(ctx context.Context) error {
	results, err := a.favorites.List(ctx)
	if err != nil {
		return err
	}
	printProperties(results)
	return nil
}

func (a *app) cmdFavorite(ctx context.Context, args []string, add bool) error {
	id, err := argID(args)
	if err != nil {
		return err
	}

	if !add {
		if err := a.favorites.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Removed favorite #%d\n", id)
		return nil
	}

	if _, err := a.favorites.Add(ctx, id); err != nil {
		if errors.Is(err, favorites.ErrAlreadyFavorited) {
			fmt.Printf("Listing #%d is already in your favorites\n", id)
			return nil
		}
		return err
	}

	fmt.Printf("Added favorite #%d\n", id)
	return nil
}

// # Admin Commands

func (a *app) cmdAdmin(ctx context.Context, args []string) error {
	if !a.session.IsStaff() {
		return fmt.Errorf("admin commands require a staff account")
	}
	if len(args) == 0 {
		return fmt.Errorf("admin: missing subcommand (users, verify, ban, reports)")
	}

	switch args[0] {

	case "users":
		users, err := a.admin.ListUsers(ctx)
		if err != nil {
			return err
		}
		for _, user := range users {
			fmt.Printf("#%-4d %-20s %-30s landlord=%-5v staff=%-5v verified=%v\n",
				user.ID, user.Username, user.Email, user.IsLandlord, user.IsStaff, user.IsVerified)
		}
		return nil

	case "verify":
		id, err := argID(args[1:])
		if err != nil {
			return err
		}
		if err := a.admin.VerifyUser(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Verified user #%d\n", id)
		return nil

	case "ban":
		id, err := argID(args[1:])
		if err != nil {
			return err
		}
		if err := a.admin.BanUser(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Banned user #%d\n", id)
		return nil

	case "reports":
		report, err := a.admin.Reports(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Users: %d\nProperties: %d\nFavorites: %d\n",
			report.TotalUsers, report.TotalProperties, report.TotalFavorites)
		return nil

	default:
		return fmt.Errorf("admin: unknown subcommand %q", args[0])
	}
}

// # Misc Commands

func (a *app) cmdContact(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("contact", flag.ContinueOnError)
	name := flags.String("name", "", "your name")
	email := flags.String("email", "", "your email")
	message := flags.String("message", "", "message body")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := a.contact.Send(ctx, contact.Inquiry{
		Name:    *name,
		Email:   *email,
		Message: *message,
	}); err != nil {
		return err
	}

	fmt.Println("Message sent. We'll get back to you.")
	return nil
}

// cmdLang reads or writes the persisted language preference.
func (a *app) cmdLang(ctx context.Context, args []string) error {
	if len(args) == 0 {
		language, err := a.store.Get(ctx, constants.KeyLanguage)
		if err != nil {
			language = constants.DefaultLanguage
		}
		fmt.Println(language)
		return nil
	}
	return a.store.Set(ctx, constants.KeyLanguage, args[0])
}

// # Rendering

func printProperties(properties []listings.Property) {
	if len(properties) == 0 {
		fmt.Println("No listings found")
		return
	}
	for _, p := range properties {
		marker := " "
		if p.IsFavorited {
			marker = "*"
		}
		fmt.Printf("%s #%-4d %-16s %-16s M%-10.2f %-9s landlord: %s\n",
			marker, p.ID, p.Area, p.District, p.RentalAmount, p.Status, p.LandlordUsername)
	}
}

func argID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing id argument")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
