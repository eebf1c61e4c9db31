package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_LoginForm(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&LoginForm{Email: "claire@vasy.fr", Password: "x"}))

	err := v.Validate(&LoginForm{Email: "pas-un-email"})
	require.Error(t, err)

	var ve Errors
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{"Email invalide"}, ve["email"])
	require.Equal(t, []string{"Mot de passe requis"}, ve["password"])
}

func TestValidate_RegisterFormPasswordRules(t *testing.T) {
	v := New()

	err := v.Validate(&RegisterForm{
		Email:           "claire@vasy.fr",
		Password:        "court",
		ConfirmPassword: "autre",
	})
	require.Error(t, err)

	var ve Errors
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{"Le mot de passe doit contenir au moins 8 caractères"}, ve["password"])
	require.Equal(t, []string{"Les mots de passe ne correspondent pas"}, ve["confirmPassword"])
}

func TestValidate_ProductFormPriceBounds(t *testing.T) {
	v := New()

	valid := &ProductForm{Name: "Vase", Price: 2500, ImageURLs: "/a.png"}
	require.NoError(t, v.Validate(valid))

	for _, price := range []int64{999, 500001} {
		err := v.Validate(&ProductForm{Name: "Vase", Price: price, ImageURLs: "/a.png"})
		require.Error(t, err, price)

		var ve Errors
		require.ErrorAs(t, err, &ve)
		require.Equal(t, []string{"Le prix doit être entre 10€ et 5000€"}, ve["price"])
	}
}

func TestValidate_EventFormRequiresPickedAddress(t *testing.T) {
	v := New()

	lat, lng := 48.8566, 2.3522
	valid := &EventForm{
		Name:         "Marché de la céramique",
		Date:         "2026-09-12",
		LocationText: "Place des Vosges, Paris",
		Latitude:     &lat,
		Longitude:    &lng,
	}
	require.NoError(t, v.Validate(valid))

	err := v.Validate(&EventForm{})
	require.Error(t, err)

	var ve Errors
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{"Le nom de l'événement est requis"}, ve["name"])
	require.Equal(t, []string{"La date est requise"}, ve["date"])
	require.Equal(t, []string{"Veuillez sélectionner une adresse dans la liste"}, ve["locationText"])
	require.Equal(t, []string{"Veuillez sélectionner une adresse valide dans la liste"}, ve["latitude"])
	require.Equal(t, []string{"Veuillez sélectionner une adresse valide dans la liste"}, ve["longitude"])
}

func TestValidate_EventUpdateFormFreeTextLocation(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&EventUpdateForm{
		Name:         "Marché de la céramique",
		Date:         "2026-09-12",
		LocationText: "Place des Vosges, Paris",
	}))

	err := v.Validate(&EventUpdateForm{Name: "Marché", Date: "2026-09-12"})
	require.Error(t, err)

	var ve Errors
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{"Le lieu est requis"}, ve["locationText"])
}

func TestEventForm_DateTime(t *testing.T) {
	f := &EventForm{Date: "2026-09-12", Time: "18:30"}
	require.Equal(t, "2026-09-12T18:30:00", f.DateTime())

	f.Time = ""
	require.Equal(t, "2026-09-12T00:00:00", f.DateTime())
}

func TestValidate_InviteRegisterFormSiret(t *testing.T) {
	v := New()

	form := &InviteRegisterForm{
		DisplayName:     "  Atelier Lune  ",
		Siret:           "123 456 789 00012",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	}
	form.Normalize()
	require.Equal(t, "12345678900012", form.Siret)
	require.Equal(t, "Atelier Lune", form.DisplayName)
	require.NoError(t, v.Validate(form))

	bad := &InviteRegisterForm{
		DisplayName:     "Atelier",
		Siret:           "12AB",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	}
	err := v.Validate(bad)
	var ve Errors
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{"Le SIRET doit contenir 14 chiffres"}, ve["siret"])
}

func TestValidate_ProfileUpdateRequiresCurrentPassword(t *testing.T) {
	v := New()

	// Email-only update needs no password fields.
	require.NoError(t, v.Validate(&ProfileUpdateForm{Email: "claire@vasy.fr"}))

	err := v.Validate(&ProfileUpdateForm{
		Email:           "claire@vasy.fr",
		NewPassword:     "Secret123",
		ConfirmPassword: "Secret123",
	})
	require.Error(t, err)

	var ve Errors
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{"Mot de passe actuel requis"}, ve["currentPassword"])
}

func TestFormError(t *testing.T) {
	ve := FormError("Identifiants invalides")
	require.Equal(t, Errors{"form": {"Identifiants invalides"}}, ve)
	require.Equal(t, "validation failed", ve.Error())
}
