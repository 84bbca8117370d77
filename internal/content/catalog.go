package content

import "iam-academy-service/internal/domain"

// Catalog returns the built-in IAM curriculum. In production deployments the
// Postgres loader replaces this, but the built-in set keeps the service fully
// functional with zero infrastructure and doubles as seed data.
func Catalog() map[string]domain.CourseModule {
	modules := []domain.CourseModule{
		oauth2Module(),
		oidcModule(),
		samlModule(),
		fido2Module(),
		zanzibarModule(),
		didModule(),
	}
	out := make(map[string]domain.CourseModule, len(modules))
	for _, m := range modules {
		out[m.ID] = m
	}
	return out
}

func oauth2Module() domain.CourseModule {
	return domain.CourseModule{
		ID:      "oauth2-fundamentals",
		Title:   "OAuth 2.0 Fundamentals",
		Summary: "Delegated authorization: roles, grant types, tokens, and common pitfalls.",
		Lessons: []string{
			"Why OAuth exists: the password anti-pattern",
			"Roles: resource owner, client, authorization server, resource server",
			"Authorization code flow with PKCE",
			"Access tokens, refresh tokens, and scopes",
		},
		BadgeID: "badge-oauth2",
		Quiz: domain.Quiz{
			ModuleID: "oauth2-fundamentals",
			Questions: []domain.Question{
				{
					ID:   "oauth2-q1",
					Text: "Which OAuth 2.0 role issues access tokens?",
					Options: []string{
						"Resource server",
						"Authorization server",
						"Client",
						"Resource owner",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "The authorization server authenticates the resource owner and issues tokens; the resource server merely validates them.",
				},
				{
					ID:   "oauth2-q2",
					Text: "What problem does PKCE solve?",
					Options: []string{
						"Token expiry for long-running jobs",
						"Authorization code interception by a malicious app",
						"Scope escalation by the resource server",
						"Refresh token rotation",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "PKCE binds the code exchange to the client that started the flow, so an intercepted code is useless without the verifier.",
				},
				{
					ID:   "oauth2-q3",
					Text: "Which grant type is recommended for single-page applications today?",
					Options: []string{
						"Implicit grant",
						"Resource owner password credentials",
						"Authorization code with PKCE",
						"Client credentials",
					},
					CorrectAnswerIndex: 2,
					Explanation:        "The implicit grant is deprecated; SPAs should use the authorization code flow with PKCE.",
				},
				{
					ID:   "oauth2-q4",
					Text: "An access token's audience should be validated by:",
					Options: []string{
						"The resource server",
						"The user agent",
						"The authorization server only",
						"Nobody; audience is informational",
					},
					CorrectAnswerIndex: 0,
					Explanation:        "Resource servers must reject tokens minted for a different audience, otherwise tokens become bearer keys to every API.",
				},
				{
					ID:   "oauth2-q5",
					Text: "Scopes in OAuth 2.0 express:",
					Options: []string{
						"The identity of the user",
						"The subset of access the client requests",
						"The token signing algorithm",
						"The redirect URI allow-list",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "Scopes bound what the client may do with the token; they are not an authentication mechanism.",
				},
			},
		},
	}
}

func oidcModule() domain.CourseModule {
	return domain.CourseModule{
		ID:      "oidc-essentials",
		Title:   "OpenID Connect Essentials",
		Summary: "Authentication on top of OAuth 2.0: ID tokens, claims, and discovery.",
		Lessons: []string{
			"OIDC vs OAuth: authentication vs authorization",
			"The ID token and its claims",
			"Discovery documents and JWKS",
			"Session management and logout",
		},
		BadgeID: "badge-oidc",
		Quiz: domain.Quiz{
			ModuleID: "oidc-essentials",
			Questions: []domain.Question{
				{
					ID:   "oidc-q1",
					Text: "What does an ID token primarily represent?",
					Options: []string{
						"Permission to call an API",
						"An authentication event for a user",
						"A refresh credential",
						"A SAML assertion in JSON form",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "The ID token tells the client who authenticated and when; API access still belongs to the access token.",
				},
				{
					ID:   "oidc-q2",
					Text: "Which claim identifies the user in an ID token?",
					Options: []string{"aud", "iss", "sub", "nonce"},
					CorrectAnswerIndex: 2,
					Explanation:        "sub is the stable subject identifier; iss and aud identify issuer and audience, nonce binds the token to the request.",
				},
				{
					ID:   "oidc-q3",
					Text: "The nonce parameter protects against:",
					Options: []string{
						"Token replay into a different login flow",
						"Expired signing keys",
						"Scope escalation",
						"Clock skew",
					},
					CorrectAnswerIndex: 0,
					Explanation:        "The client checks that the nonce inside the ID token matches the one it generated, preventing replayed tokens.",
				},
				{
					ID:   "oidc-q4",
					Text: "Where does a relying party find the provider's signing keys?",
					Options: []string{
						"The userinfo endpoint",
						"The JWKS URI from the discovery document",
						"The token's header",
						"A pre-shared secret",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "Discovery publishes jwks_uri; keys are fetched and cached from there so rotation works without redeployment.",
				},
			},
		},
	}
}

func samlModule() domain.CourseModule {
	return domain.CourseModule{
		ID:      "saml-foundations",
		Title:   "SAML 2.0 Foundations",
		Summary: "Enterprise single sign-on with XML assertions, bindings, and metadata.",
		Lessons: []string{
			"IdP, SP, and the browser in the middle",
			"Assertions, bindings, and profiles",
			"SP-initiated vs IdP-initiated SSO",
			"Signature wrapping and other classic attacks",
		},
		BadgeID: "badge-saml",
		Quiz: domain.Quiz{
			ModuleID: "saml-foundations",
			Questions: []domain.Question{
				{
					ID:   "saml-q1",
					Text: "In SAML, which party produces the assertion?",
					Options: []string{
						"The service provider",
						"The identity provider",
						"The user agent",
						"The metadata registry",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "The IdP authenticates the user and signs an assertion that the SP consumes.",
				},
				{
					ID:   "saml-q2",
					Text: "Why must an SP validate the assertion's signature before anything else?",
					Options: []string{
						"To decrypt the NameID",
						"Because unsigned portions of the XML can be attacker-controlled",
						"To negotiate the binding",
						"Signature validation is optional with HTTPS",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "XML signature wrapping attacks splice attacker content around a valid signature; the SP must verify what was actually signed.",
				},
				{
					ID:   "saml-q3",
					Text: "The HTTP-Redirect binding carries the SAML request in:",
					Options: []string{
						"A POST body",
						"A SOAP envelope",
						"A deflated, base64-encoded query parameter",
						"A cookie",
					},
					CorrectAnswerIndex: 2,
					Explanation:        "HTTP-Redirect compresses and encodes the message into the URL; responses typically come back via HTTP-POST.",
				},
				{
					ID:   "saml-q4",
					Text: "SAML metadata primarily exists to:",
					Options: []string{
						"Exchange endpoints, certificates, and entity IDs between parties",
						"Store user attributes",
						"Replace the assertion format",
						"Rate-limit SSO requests",
					},
					CorrectAnswerIndex: 0,
					Explanation:        "Metadata is the trust bootstrap: each side learns the other's endpoints and signing certificates from it.",
				},
			},
		},
	}
}

func fido2Module() domain.CourseModule {
	return domain.CourseModule{
		ID:      "fido2-webauthn",
		Title:   "FIDO2 and WebAuthn",
		Summary: "Phishing-resistant authentication with public-key credentials.",
		Lessons: []string{
			"Passwords, phishing, and why possession factors help",
			"Registration and assertion ceremonies",
			"Authenticators, attestation, and user verification",
			"Passkeys and cross-device sync",
		},
		BadgeID: "badge-fido2",
		Quiz: domain.Quiz{
			ModuleID: "fido2-webauthn",
			Questions: []domain.Question{
				{
					ID:   "fido2-q1",
					Text: "Why is WebAuthn resistant to phishing?",
					Options: []string{
						"Credentials are scoped to the registering origin",
						"It uses longer passwords",
						"The server stores no secrets",
						"TLS is mandatory",
					},
					CorrectAnswerIndex: 0,
					Explanation:        "The browser only exercises a credential for the origin it was created on, so a look-alike site gets nothing.",
				},
				{
					ID:   "fido2-q2",
					Text: "During an assertion, what does the authenticator sign?",
					Options: []string{
						"The user's password hash",
						"A server-provided challenge plus client data",
						"The attestation certificate",
						"The session cookie",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "Signing the fresh challenge proves possession of the private key for this exact request.",
				},
				{
					ID:   "fido2-q3",
					Text: "What does the relying party store after registration?",
					Options: []string{
						"The credential's private key",
						"The credential ID and public key",
						"The authenticator's PIN",
						"A recovery password",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "Only public material is stored server-side; the private key never leaves the authenticator.",
				},
				{
					ID:   "fido2-q4",
					Text: "User verification (UV) in FIDO2 means:",
					Options: []string{
						"The server verified the user's email",
						"The authenticator locally verified the user, e.g. via PIN or biometric",
						"Attestation chain validation",
						"The browser checked the origin",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "UV upgrades the factor from possession-only to possession plus knowledge or inherence, all verified on-device.",
				},
			},
		},
	}
}

func zanzibarModule() domain.CourseModule {
	return domain.CourseModule{
		ID:      "zanzibar-authorization",
		Title:   "Zanzibar-style Authorization",
		Summary: "Relationship-based access control: tuples, namespaces, and check semantics.",
		Lessons: []string{
			"From RBAC to ReBAC",
			"Relation tuples and namespace configs",
			"Check, expand, and the new-enemy problem",
			"Consistency tokens (zookies)",
		},
		BadgeID: "badge-zanzibar",
		Quiz: domain.Quiz{
			ModuleID: "zanzibar-authorization",
			Questions: []domain.Question{
				{
					ID:   "zanzibar-q1",
					Text: "A Zanzibar relation tuple expresses:",
					Options: []string{
						"object#relation@subject",
						"role -> permission",
						"user -> group hash",
						"ACL bitmaps per row",
					},
					CorrectAnswerIndex: 0,
					Explanation:        "Tuples like doc:readme#viewer@user:ana are the atomic facts the system stores and evaluates.",
				},
				{
					ID:   "zanzibar-q2",
					Text: "The 'new enemy' problem occurs when:",
					Options: []string{
						"Two users share a password",
						"A permission check uses an ACL snapshot older than a related content change",
						"An attacker forges a zookie",
						"Groups become circular",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "If checks can observe stale ACLs relative to content, a freshly revoked user may still read new content; zookies order the two.",
				},
				{
					ID:   "zanzibar-q3",
					Text: "Userset rewrites (e.g. viewer includes editor) live in:",
					Options: []string{
						"Each relation tuple",
						"The namespace configuration",
						"The client SDK",
						"A separate RBAC table",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "Namespace configs define how relations compose, keeping the tuple store free of derived facts.",
				},
				{
					ID:   "zanzibar-q4",
					Text: "A check(object, relation, subject) call answers:",
					Options: []string{
						"All subjects with the relation",
						"Whether the subject has the relation on the object",
						"The full group hierarchy",
						"Which zookie is newest",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "Check is the point query; expand is the API that materializes the full effective userset.",
				},
			},
		},
	}
}

func didModule() domain.CourseModule {
	return domain.CourseModule{
		ID:      "decentralized-identity",
		Title:   "Decentralized Identity",
		Summary: "DIDs, verifiable credentials, and wallet-held identity.",
		Lessons: []string{
			"DIDs and DID documents",
			"Verifiable credentials and presentations",
			"Issuer, holder, verifier trust triangle",
			"Selective disclosure",
		},
		// Capstone module; certification is handled outside the badge system.
		BadgeID: "",
		Quiz: domain.Quiz{
			ModuleID: "decentralized-identity",
			Questions: []domain.Question{
				{
					ID:   "did-q1",
					Text: "A DID resolves to:",
					Options: []string{
						"An X.509 certificate",
						"A DID document describing keys and service endpoints",
						"A blockchain transaction",
						"An OAuth client registration",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "Resolution produces the DID document; the ledger or method backing it is an implementation detail.",
				},
				{
					ID:   "did-q2",
					Text: "In the VC trust triangle, the verifier trusts:",
					Options: []string{
						"The holder's wallet vendor",
						"The issuer's signature over the credential",
						"The DID method specification",
						"The transport layer",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "Verification chains back to the issuer's keys; the holder merely presents what the issuer attested.",
				},
				{
					ID:   "did-q3",
					Text: "Selective disclosure lets a holder:",
					Options: []string{
						"Rotate DID keys",
						"Reveal only a subset of credential claims",
						"Revoke issued credentials",
						"Anchor documents on-chain",
					},
					CorrectAnswerIndex: 1,
					Explanation:        "Formats like SD-JWT and BBS+ signatures allow proving individual claims without exposing the whole credential.",
				},
			},
		},
	}
}
