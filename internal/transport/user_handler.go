package transport

import (
	"net/http"

	"nextgen-storefront/internal/auth"
	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/user"
)

type userHandler struct {
	users         user.Service
	secureCookies bool
}

type ProfilePictureRequest struct {
	Image string `json:"image"`
}

func (h *userHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in user.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	sess, err := h.users.Login(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setTokenCookie(w, sess.Token)
	respondJSON(w, http.StatusOK, sess)
}

func (h *userHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in user.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	sess, err := h.users.Signup(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.setTokenCookie(w, sess.Token)
	respondJSON(w, http.StatusCreated, sess)
}

// Logout drops the session cookie and the user's cart. Guests only lose
// the cookie.
func (h *userHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		if err := h.users.Logout(r.Context(), id.UserID); err != nil && !cart.IsWarning(err) {
			respondError(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *userHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Profile(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *userHandler) SetProfilePicture(w http.ResponseWriter, r *http.Request) {
	var req ProfilePictureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := h.users.SetProfilePicture(r.Context(), req.Image)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *userHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
