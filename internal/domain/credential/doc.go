// Package credential defines the encrypted marketplace API credential of a
// seller and the ports used to store and seal it.
//
// A credential is unique per (user, title). Its active flag is only ever set
// through the subscription-gated write path of the application layer.
package credential
