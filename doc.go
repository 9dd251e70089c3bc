// Package restconsumer builds REST API consumers from a declarative
// description of an API's paths and verbs.
//
// A [Descriptor] tree declares paths, the verbs each path answers and nested
// sub-resources. [New] compiles the tree into a [Consumer] whose members are
// navigated by name, and whose verb methods issue calls through a [Fetcher],
// normally a [Transport] wrapping [github.com/go-resty/resty/v2].
//
// # Basic Usage
//
//	api := &restconsumer.Descriptor{
//	    Children: map[string]*restconsumer.Descriptor{
//	        "widget": {Path: "/widget/%id%", Verbs: []restconsumer.Verb{restconsumer.VerbGet}},
//	    },
//	}
//
//	root, err := restconsumer.New("https://api.example.com", api,
//	    restconsumer.NewTransport(restconsumer.WithMaxAttempts(5)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	widget, err := root.Resolve("widget", 7)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := widget.Get(ctx, restconsumer.Params{{Key: "verbose", Value: true}})
//
// # Navigation
//
// Children without a placeholder are properties and are reached with
// [Consumer.Child]. Children whose path holds a %name% placeholder are
// resolvers and need exactly one value, passed to [Consumer.Resolve].
// [Consumer.Lookup] returns either kind as a [Member]. Undeclared names and
// verbs, missing values and surplus arguments fail with an InvalidOptions
// failure before any request is made.
//
// # Retry Behaviour
//
// Every [Transport.Fetch] runs under a policy from package retry. By default
// a call is made at most 3 times, 500ms apart. Responses are classified by
// [DefaultStatusRules]: 401 and 403 fail at once with InvalidCredentials,
// 501 becomes a retried RecoverableFailure, and 500, 502, 503 and 504 are
// retried before the original [*HTTPError] is returned. Any other status is
// returned as an [*HTTPError] on the first attempt. Adjust the table with
// [WithStatusRule] and [WithoutStatusRule].
//
// # Authentication
//
// Basic authentication is declared with [Auth] on a descriptor node and
// inherited by its descendants. APIs that expect a static token among the
// request parameters use a [TokenTransport].
//
// # Logging
//
// Implement [RequestLogger] and supply it via [WithRequestLogger], or use
// [NewSlogLogger]. The default [NoopLogger] discards all log output.
// Passwords are never passed to the logger.
package restconsumer
