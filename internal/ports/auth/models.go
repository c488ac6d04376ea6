package auth

// Claims representa la información extraída del token.
// Role viaja en el token para no consultar el directorio en cada request;
// las operaciones sensibles igual re-verifican el rol contra persistencia.
type Claims struct {
	UserID string
	Role   string
	Email  string
}
