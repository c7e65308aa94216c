// Package notify delivers short user-facing messages that dismiss themselves.
//
// Components report through the Sink interface; the Hub keeps the active
// messages for the console and LogSink mirrors them into logrus.
package notify
