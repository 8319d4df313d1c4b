package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreamware/petsclaws/internal/cart"
	"github.com/dreamware/petsclaws/internal/identity"
	"github.com/dreamware/petsclaws/internal/preferences"
	"github.com/dreamware/petsclaws/internal/storefront"
)

// signedIn returns the local current user or ErrNotSignedIn.
func signedIn(ctx context.Context, shop *storefront.Storefront) (identity.Session, error) {
	sess, ok, err := shop.Current(ctx)
	if err != nil {
		return identity.Session{}, err
	}
	if !ok {
		return identity.Session{}, fmt.Errorf("%w: run `petsclaws login` first", storefront.ErrNotSignedIn)
	}
	return sess, nil
}

// localShopper is the signed-in user, or the local guest.
func localShopper(ctx context.Context, shop *storefront.Storefront) (storefront.Shopper, error) {
	sess, ok, err := shop.Current(ctx)
	if err != nil {
		return storefront.Shopper{}, err
	}
	if ok {
		return storefront.UserShopper(sess), nil
	}
	return storefront.GuestShopper(cart.DefaultGuest), nil
}

func (a *app) registerCmd() *cobra.Command {
	var n identity.NewUser
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			ctx := cmd.Context()
			sess, ok, err := shop.Register(ctx, n, cart.DefaultGuest)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("email %s is already registered", n.Email)
			}
			if err := shop.Remember(ctx, sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are signed in as %s.\n", sess.Name, sess.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&n.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&n.Password, "password", "", "Password")
	cmd.Flags().StringVar(&n.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&n.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&n.Address, "address", "", "Address")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; the local guest cart moves to an empty account cart",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			ctx := cmd.Context()
			sess, ok, err := shop.Login(ctx, email, password, cart.DefaultGuest)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("invalid email or password")
			}
			if err := shop.Remember(ctx, sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", sess.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			if err := shop.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		}),
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			sess, ok, err := shop.Current(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", sess.Name, sess.Email)
			return nil
		}),
	}
}

func (a *app) profileCmd() *cobra.Command {
	var name, phone, address string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the signed-in user's profile",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			ctx := cmd.Context()
			sess, err := signedIn(ctx, shop)
			if err != nil {
				return err
			}

			var upd identity.ProfileUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				upd.Name = &name
			}
			if flags.Changed("phone") {
				upd.Phone = &phone
			}
			if flags.Changed("address") {
				upd.Address = &address
			}

			var u identity.User
			if upd == (identity.ProfileUpdate{}) {
				u, err = shop.Profile(ctx, sess)
			} else {
				u, err = shop.UpdateProfile(ctx, sess, upd)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:    %s\n", u.Name)
			fmt.Fprintf(out, "Email:   %s\n", u.Email)
			fmt.Fprintf(out, "Phone:   %s\n", u.Phone)
			fmt.Fprintf(out, "Address: %s\n", u.Address)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&phone, "phone", "", "New phone number")
	cmd.Flags().StringVar(&address, "address", "", "New address")
	return cmd
}

func (a *app) themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Show or set the colour theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				t, err := preferences.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := shop.Prefs.SetTheme(ctx, t); err != nil {
					return err
				}
			}
			t, err := shop.Prefs.Theme(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", t)
			return nil
		}),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			t, err := shop.Prefs.Toggle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", t)
			return nil
		}),
	})
	return cmd
}
