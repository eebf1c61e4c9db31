// Package validate checks form input before anything reaches the backend.
// Messages are user-facing and ship in French like the rest of the product.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps form fields to user-visible messages. It is an error so form
// actions can return it and let the central handler render a 400 with
// field-level feedback. The "form" key carries non-field failures.
type Errors map[string][]string

func (e Errors) Error() string {
	return "validation failed"
}

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// FormError wraps one backend (or other non-field) message as a validation
// failure so it renders inline in the form.
func FormError(msg string) Errors {
	return Errors{"form": {msg}}
}

// Validator plugs into echo.Echo.Validator.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (val *Validator) Validate(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := Errors{}
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		out.Add(field, messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "Email":
		if fe.Tag() == "required" {
			return "Email requis"
		}
		return "Email invalide"
	case "Password", "NewPassword":
		switch fe.Tag() {
		case "required":
			return "Mot de passe requis"
		case "min":
			return fmt.Sprintf("Le mot de passe doit contenir au moins %s caractères", fe.Param())
		}
	case "ConfirmPassword":
		if fe.Tag() == "required" {
			return "Confirmation du mot de passe requise"
		}
		return "Les mots de passe ne correspondent pas"
	case "CurrentPassword":
		return "Mot de passe actuel requis"
	case "DisplayName":
		return "Le nom d'affichage est requis"
	case "Siret":
		if fe.Tag() == "required" {
			return "Le numéro de SIRET est requis"
		}
		return "Le SIRET doit contenir 14 chiffres"
	case "Name":
		if strings.HasPrefix(fe.StructNamespace(), "Event") {
			return "Le nom de l'événement est requis"
		}
		return "Le nom du produit est requis"
	case "Date":
		return "La date est requise"
	case "LocationText":
		if strings.HasPrefix(fe.StructNamespace(), "EventUpdateForm") {
			return "Le lieu est requis"
		}
		return "Veuillez sélectionner une adresse dans la liste"
	case "Latitude", "Longitude":
		return "Veuillez sélectionner une adresse valide dans la liste"
	case "Price":
		if fe.Tag() == "required" {
			return "Le prix est requis"
		}
		return "Le prix doit être entre 10€ et 5000€"
	case "Stock":
		return "Le stock doit être un nombre positif"
	case "ImageURLs":
		return "Au moins une image est requise"
	}
	return "Valeur invalide"
}

type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

type RegisterForm struct {
	Email           string `form:"email" json:"email" validate:"required,email"`
	Password        string `form:"password" json:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"required,eqfield=Password"`
}

type ForgotPasswordForm struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

type ResetPasswordForm struct {
	Password        string `form:"password" json:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"eqfield=Password"`
}

// InviteRegisterForm finishes a creator invitation. Siret is normalized with
// Normalize before validation.
type InviteRegisterForm struct {
	DisplayName     string `form:"displayName" json:"displayName" validate:"required"`
	Siret           string `form:"siret" json:"siret" validate:"required,len=14,numeric"`
	Password        string `form:"password" json:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"eqfield=Password"`
}

func (f *InviteRegisterForm) Normalize() {
	f.Siret = strings.ReplaceAll(f.Siret, " ", "")
	f.DisplayName = strings.TrimSpace(f.DisplayName)
}

// ProductForm prices are in cents; the 1000..500000 bounds are the product
// rule of 10€ to 5000€.
type ProductForm struct {
	Name        string `form:"name" json:"name" validate:"required"`
	Description string `form:"description" json:"description"`
	Price       int64  `form:"price" json:"price" validate:"required,min=1000,max=500000"`
	Stock       int    `form:"stock" json:"stock" validate:"min=0"`
	ImageURLs   string `form:"imageUrls" json:"imageUrls" validate:"required"`
}

// EventForm creates an event or edits one as an admin. Coordinates come from
// the address picker, so a missing pair means the user typed an address
// without selecting a suggestion.
type EventForm struct {
	Name         string   `form:"name" json:"name" validate:"required"`
	Description  string   `form:"description" json:"description"`
	Date         string   `form:"date" json:"date" validate:"required"`
	Time         string   `form:"time" json:"time"`
	LocationText string   `form:"locationText" json:"locationText" validate:"required"`
	Latitude     *float64 `form:"latitude" json:"latitude" validate:"required"`
	Longitude    *float64 `form:"longitude" json:"longitude" validate:"required"`
}

func (f *EventForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.LocationText = strings.TrimSpace(f.LocationText)
}

// DateTime joins the date and optional time fields into the timestamp the
// backend expects, defaulting to midnight.
func (f *EventForm) DateTime() string {
	if f.Time != "" {
		return f.Date + "T" + f.Time + ":00"
	}
	return f.Date + "T00:00:00"
}

// EventUpdateForm is the creator-side edit. Creators cannot move the pin, so
// there are no coordinates and the location is free text.
type EventUpdateForm struct {
	Name         string `form:"name" json:"name" validate:"required"`
	Description  string `form:"description" json:"description"`
	Date         string `form:"date" json:"date" validate:"required"`
	Time         string `form:"time" json:"time"`
	LocationText string `form:"locationText" json:"locationText" validate:"required"`
}

func (f *EventUpdateForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.LocationText = strings.TrimSpace(f.LocationText)
}

func (f *EventUpdateForm) DateTime() string {
	if f.Time != "" {
		return f.Date + "T" + f.Time + ":00"
	}
	return f.Date + "T00:00:00"
}

type ProfileUpdateForm struct {
	Email           string `form:"email" json:"email" validate:"required,email"`
	CurrentPassword string `form:"currentPassword" json:"currentPassword" validate:"required_with=NewPassword"`
	NewPassword     string `form:"newPassword" json:"newPassword" validate:"omitempty,min=6"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"eqfield=NewPassword"`
}

type InvitationForm struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

type CreatorProfileForm struct {
	DisplayName     string `form:"displayName" json:"displayName" validate:"required"`
	Bio             string `form:"bio" json:"bio"`
	ProfileImageURL string `form:"profileImageUrl" json:"profileImageUrl"`
}
