package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ameliecafe/storefront/internal/auth"
	"github.com/ameliecafe/storefront/internal/store"
)

// AdminLoginPage handles GET /admin/login.
func (s *Server) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "admin_login.html", &PageData{Title: "Painel"})
}

// AdminLoginSubmit handles POST /admin/login.
func (s *Server) AdminLoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		s.Templates.Render(w, "admin_login.html", &PageData{
			Title: "Painel",
			Error: "Informe e-mail e senha.",
		})
		return
	}

	user, err := store.GetUserByEmail(r.Context(), s.DB, email)
	if err != nil || user == nil {
		s.Templates.Render(w, "admin_login.html", &PageData{
			Title: "Painel",
			Error: "Falha no login. Verifique seu e-mail e senha.",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("admin login failed", "email", email, "remote", r.RemoteAddr)
		s.Templates.Render(w, "admin_login.html", &PageData{
			Title: "Painel",
			Error: "Falha no login. Verifique seu e-mail e senha.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Email)
	if err != nil {
		s.Templates.Render(w, "admin_login.html", &PageData{
			Title: "Painel",
			Error: "Erro ao iniciar a sessão.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})

	slog.Info("admin signed in", "user", user.Email)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// AdminLogout handles POST /admin/logout.
func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	s.revokeSession(r)
	clearAuthCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// revokeSession revokes the current session token, if there is one.
func (s *Server) revokeSession(r *http.Request) {
	cookie, err := r.Cookie(authCookie)
	if err != nil || cookie.Value == "" {
		return
	}
	claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		slog.Error("failed to revoke token", "error", err)
	}
}

// ResetRequestPage handles GET /admin/recuperar.
func (s *Server) ResetRequestPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "recuperar.html", &PageData{Title: "Recuperar senha"})
}

// ResetRequestSubmit handles POST /admin/recuperar. The response is the same
// whether or not the email matches an account.
func (s *Server) ResetRequestSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		s.Templates.Render(w, "recuperar.html", &PageData{
			Title: "Recuperar senha",
			Error: "Informe o e-mail da conta.",
		})
		return
	}

	user, err := store.GetUserByEmail(r.Context(), s.DB, email)
	if err != nil {
		slog.Error("failed to look up user for reset", "error", err)
	}
	if user != nil {
		token, err := store.CreatePasswordReset(r.Context(), s.DB, user.ID)
		if err != nil {
			slog.Error("failed to create password reset", "error", err)
		} else {
			link := fmt.Sprintf("%s/admin/recuperar/%s", strings.TrimRight(s.Cfg.BaseURL, "/"), token)
			body := fmt.Sprintf("Olá!\n\nPara redefinir a senha do painel do Amélie Café, acesse:\n\n%s\n\nO link vale por uma hora. Se você não pediu a redefinição, ignore esta mensagem.\n", link)
			if err := s.Mailer.Send(user.Email, "Amélie Café — redefinição de senha", body); err != nil {
				slog.Error("failed to send reset mail", "error", err)
			}
		}
	}

	s.Templates.Render(w, "recuperar.html", &PageData{
		Title:   "Recuperar senha",
		Success: "Se o e-mail estiver cadastrado, você receberá um link de redefinição.",
	})
}

// ResetPage handles GET /admin/recuperar/{token}.
func (s *Server) ResetPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "recuperar_nova.html", &struct {
		PageData
		Token string
	}{
		PageData: PageData{Title: "Nova senha"},
		Token:    r.PathValue("token"),
	})
}

// ResetSubmit handles POST /admin/recuperar/{token}.
func (s *Server) ResetSubmit(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")

	renderErr := func(msg string) {
		s.Templates.Render(w, "recuperar_nova.html", &struct {
			PageData
			Token string
		}{
			PageData: PageData{Title: "Nova senha", Error: msg},
			Token:    token,
		})
	}

	if password == "" {
		renderErr("Informe a nova senha.")
		return
	}
	if password != confirm {
		renderErr("As senhas não coincidem.")
		return
	}

	userID, err := store.ConsumePasswordReset(r.Context(), s.DB, token)
	if err != nil {
		slog.Error("failed to consume reset token", "error", err)
		renderErr("Erro ao redefinir a senha.")
		return
	}
	if userID == 0 {
		renderErr("Link inválido ou expirado. Peça uma nova redefinição.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		renderErr("Erro ao redefinir a senha.")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, userID, string(hash)); err != nil {
		slog.Error("failed to update password", "error", err)
		renderErr("Erro ao redefinir a senha.")
		return
	}

	slog.Info("password reset completed", "user_id", userID)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
