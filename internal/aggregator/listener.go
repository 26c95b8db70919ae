package aggregator

import (
	"context"
	"errors"

	"lavanderia/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Redis pub/sub channels announcing ledger changes. Services publish after
// every durable write; the listener translates messages into join callbacks.
const (
	CanalVentas   = "caja:mov:ventas"
	CanalRetiros  = "caja:mov:retiros"
	CanalIngresos = "caja:mov:ingresos"
	CanalSesion   = "caja:sesion"
)

// BuscadorSesion resolves which session is currently open.
// Satisfied by repository.CajaRepository.
type BuscadorSesion interface {
	FindAbierta(ctx context.Context) (*model.SesionCaja, error)
}

// Escuchar subscribes to the four channels and drives the aggregator until
// ctx is cancelled. A CanalSesion message re-resolves the open session and
// re-targets the join; movement messages trigger a stream reload.
func Escuchar(ctx context.Context, rdb *redis.Client, a *Agregador, sesiones BuscadorSesion) {
	sub := rdb.Subscribe(ctx, CanalSesion, CanalVentas, CanalRetiros, CanalIngresos)
	defer sub.Close()

	log.Info().Msg("agregador: escuchando cambios de caja")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("agregador: listener detenido")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			switch msg.Channel {
			case CanalSesion:
				a.ResolverSesion(ctx, sesiones)
			case CanalVentas:
				a.Notificar(ctx, FuenteVentas)
			case CanalRetiros:
				a.Notificar(ctx, FuenteRetiros)
			case CanalIngresos:
				a.Notificar(ctx, FuenteIngresos)
			}
		}
	}
}

// ResolverSesion re-resolves the open session and re-targets the join.
// gorm.ErrRecordNotFound means no session is open, a normal state that
// closes the snapshot. Any other lookup failure leaves the current join in
// place: wiping a live snapshot over a transient error would report the
// drawer as closed, so the last snapshot is republished as Desactualizado,
// the same treatment a failed stream reload gets.
func (a *Agregador) ResolverSesion(ctx context.Context, sesiones BuscadorSesion) {
	sesion, err := sesiones.FindAbierta(ctx)
	switch {
	case err == nil:
		a.CambiarSesion(ctx, sesion)
	case errors.Is(err, gorm.ErrRecordNotFound):
		a.CambiarSesion(ctx, nil)
	default:
		log.Error().Err(err).Msg("agregador: no se pudo resolver la sesión abierta")
		a.Degradar()
	}
}
