package http

import (
	"strconv"

	"github.com/davidar27/tesorosindia_backend/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// headerAuthContext implementa domain.AuthContext a partir de las cabeceras
// que inyecta el gateway de autenticación. La validación de la sesión es un
// colaborador externo; aquí solo se consume identidad y rol.
type headerAuthContext struct {
	user *domain.User
}

func AuthFromRequest(c *fiber.Ctx) domain.AuthContext {
	idStr := c.Get("X-Usuario-Id")
	if idStr == "" {
		return &headerAuthContext{}
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return &headerAuthContext{}
	}

	rol := c.Get("X-Usuario-Rol")
	if rol == "" {
		rol = domain.RolCliente
	}

	return &headerAuthContext{
		user: &domain.User{ID: id, Role: rol},
	}
}

func (a *headerAuthContext) GetCurrentUser() (*domain.User, bool) {
	return a.user, a.user != nil
}

func (a *headerAuthContext) IsAuthenticated() bool {
	return a.user != nil
}
