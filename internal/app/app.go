// Package app arma el contenedor de dependencias y la lógica de
// orquestación entre providers, stores, cache y archivos.
package app

import (
	"github.com/dropDatabas3/placebook/internal/cache"
	"github.com/dropDatabas3/placebook/internal/config"
	"github.com/dropDatabas3/placebook/internal/files"
	"github.com/dropDatabas3/placebook/internal/jwt"
	"github.com/dropDatabas3/placebook/internal/oauth"
	"github.com/dropDatabas3/placebook/internal/store/core"
)

type Container struct {
	Cfg      *config.Config
	Accounts core.AccountStore
	Places   core.PlaceStore
	Cache    cache.Client
	Files    *files.Store
	Issuer   *jwt.Issuer
	OAuth    *oauth.Client
}
