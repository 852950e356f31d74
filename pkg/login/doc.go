// Package login coordinates OAuth-style authentication against the Ryde
// platform from a host mobile application.
//
// Three interchangeable authentication strategies are supported: hand-off to
// the installed Ryde rider app via deep link (native), an in-app web surface
// using the implicit grant, and an in-app web surface using the authorization
// code grant. A LoginManager owns one strategy at a time, tracks the in-flight
// attempt, classifies failures, and falls back from native to a web grant when
// the rider app is not installed.
//
// Presentation, inter-app URL dispatch, and token persistence stay behind the
// narrow PresentationSurface, AppDispatcher, and TokenStore interfaces; the
// host application supplies implementations and routes inbound URLs and
// lifecycle events back into the manager (or a Registry holding the active
// manager).
package login
