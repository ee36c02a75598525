// Package vtest declares component tests.
//
// Describe opens a suite for one component. Inside it, cases are declared
// either as chains on the suite's builder, which name themselves from
// their steps, or as ordinary bodies driven through a *Case:
//
//	func TestSignup(t *testing.T) {
//	    vtest.Describe(t, Signup, func(s *vtest.Suite) {
//	        s.WithSpy("fetch")
//
//	        s.Expect().ToRender(selector.FormWithID("signup")).AsTest()
//
//	        s.Expect().
//	            WhenSubmitting(selector.SubmitButton()).
//	            ToFetchData("/signup", vdom.Props{"method": "POST"}).
//	            AsTest()
//
//	        s.It("shows the fetched message", func(c *vtest.Case) {
//	            c.MountAndWait()
//	            c.ExpectText("Welcome!")
//	        })
//	    })
//	}
//
// # Lifecycle
//
// Every case gets a fresh container and a fresh context. Setup declared
// with WithProps, WithComponentSpy, WithSpy, WithStub and BeforeEach runs
// before the case, outer blocks first; AfterEach runs after it, inner
// blocks first. The container is then removed, component substitutions are
// cleared and the environment is restored, whether the case passed or not.
//
// Definitions are only accepted while the define function runs. Calling a
// registration method from inside a running case fails that case with
// E004.
//
// # Mounting
//
// Queries, assertions and actions made before an explicit mount mount the
// component once, with the props accumulated by setup. A builder chain
// without an act step is run as if it started with Mounted.
//
// # Failures
//
// Failures are vspec errors carrying a code (see "vspec errors" for the
// list). Builder cases report them at the line that called AsTest; Case
// methods are test helpers, so go test reports the calling line.
//
// Cases of one suite share the suite's environment and substitution
// registry and must not run in parallel.
package vtest
