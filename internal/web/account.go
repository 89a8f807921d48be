package web

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ameliecafe/storefront/internal/store"
)

// AccountPage handles GET /admin/conta.
func (s *Server) AccountPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	s.Templates.Render(w, "admin_conta.html", &PageData{
		Title: "Minha Conta",
		User:  claims,
	})
}

// renderAccount re-renders the account page with a message.
func (s *Server) renderAccount(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	s.Templates.Render(w, "admin_conta.html", &PageData{
		Title:   "Minha Conta",
		User:    GetWebClaims(r.Context()),
		Error:   errMsg,
		Success: successMsg,
	})
}

// reauthenticate re-proves the operator's current password before a
// sensitive change, independent of the session being valid.
func (s *Server) reauthenticate(r *http.Request, currentPassword string) bool {
	claims := GetWebClaims(r.Context())
	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) == nil
}

// AccountPasswordSubmit handles POST /admin/conta/senha.
func (s *Server) AccountPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	if currentPassword == "" || newPassword == "" {
		s.renderAccount(w, r, "Informe a senha atual e a nova senha.", "")
		return
	}
	if newPassword != confirm {
		s.renderAccount(w, r, "As senhas não coincidem.", "")
		return
	}
	if !s.reauthenticate(r, currentPassword) {
		s.renderAccount(w, r, "Senha atual incorreta.", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.renderAccount(w, r, "Erro ao salvar a nova senha.", "")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, string(hash)); err != nil {
		slog.Error("failed to update password", "error", err)
		s.renderAccount(w, r, "Erro ao salvar a nova senha.", "")
		return
	}

	slog.Info("password changed", "user", claims.Email)
	s.renderAccount(w, r, "", "Senha alterada com sucesso.")
}

// AccountEmailSubmit handles POST /admin/conta/email. Changing the sign-in
// email forces a sign-out: the current token is revoked and the cookie
// cleared, so the operator signs in again with the new address.
func (s *Server) AccountEmailSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	currentPassword := r.FormValue("current_password")
	newEmail := strings.TrimSpace(r.FormValue("new_email"))

	if currentPassword == "" || newEmail == "" {
		s.renderAccount(w, r, "Informe a senha atual e o novo e-mail.", "")
		return
	}
	if !strings.Contains(newEmail, "@") {
		s.renderAccount(w, r, "E-mail inválido.", "")
		return
	}
	if !s.reauthenticate(r, currentPassword) {
		s.renderAccount(w, r, "Senha atual incorreta.", "")
		return
	}

	if err := store.UpdateUserEmail(r.Context(), s.DB, claims.UserID, newEmail); err != nil {
		slog.Error("failed to update email", "error", err)
		s.renderAccount(w, r, "Erro ao salvar o novo e-mail.", "")
		return
	}

	slog.Info("email changed, forcing sign-out", "user", claims.Email, "new_email", newEmail)
	s.revokeSession(r)
	clearAuthCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
