package service

import "errors"

// Error taxonomy of the cash ledger. Every rejected operation names the
// violated invariant so the operator can correct input instead of retrying
// blindly. Handlers map these to HTTP statuses.
var (
	// ErrMontoInvalido rejects zero or negative monetary amounts.
	ErrMontoInvalido = errors.New("el monto debe ser mayor a cero")

	// ErrCajaYaAbierta rejects opening a second session.
	ErrCajaYaAbierta = errors.New("ya existe una caja abierta")

	// ErrCajaCerrada rejects operations that need an open session.
	ErrCajaCerrada = errors.New("no hay una caja abierta")

	// ErrSecuenciaNoDisponible signals the ticket counter is missing or the
	// atomic update was rejected. The whole sale attempt must be retried —
	// a previously failed number is never reused.
	ErrSecuenciaNoDisponible = errors.New("la secuencia de tickets no está disponible")

	// ErrEfectivoInsuficiente rejects a withdrawal larger than the expected
	// cash in the drawer per the live snapshot.
	ErrEfectivoInsuficiente = errors.New("efectivo insuficiente en caja")

	// ErrRegistroNoEncontrado covers settle/void/edit on a missing id.
	ErrRegistroNoEncontrado = errors.New("registro no encontrado")
)
